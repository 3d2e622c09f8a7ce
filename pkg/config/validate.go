package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "pacing.capacity").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// validActionCategories lists the accepted cost table categories.
var validActionCategories = map[string]bool{
	"single":    true,
	"composite": true,
	"batch":     true,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together so a broken
// deployment surfaces every mistake at once.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateAdmin(&cfg.Admin)...)
	errs = append(errs, validateProvider(&cfg.Provider)...)
	errs = append(errs, validateBudget(&cfg.Budget)...)
	errs = append(errs, validatePacing(&cfg.Pacing)...)
	errs = append(errs, validateCosts(cfg.Costs, cfg.Pacing.Capacity)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateAdmin(cfg *AdminConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "admin.listen_address",
			Message: "must not be empty",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "admin.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateProvider(cfg *ProviderConfig) []FieldError {
	var errs []FieldError

	if cfg.BalanceURL == "" {
		errs = append(errs, FieldError{
			Field:   "provider.balance_url",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(cfg.BalanceURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "provider.balance_url",
			Message: fmt.Sprintf("invalid URL: %q", cfg.BalanceURL),
		})
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "provider.timeout",
			Message: "must be positive",
		})
	}

	if cfg.PollSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PollSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "provider.poll_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PollSchedule, err),
			})
		}
	}

	return errs
}

func validateBudget(cfg *BudgetConfig) []FieldError {
	var errs []FieldError

	if cfg.CircuitBreakerFloor < 0 {
		errs = append(errs, FieldError{
			Field:   "budget.circuit_breaker_floor",
			Message: "must not be negative",
		})
	}
	if cfg.ReplenishPerHour < 0 {
		errs = append(errs, FieldError{
			Field:   "budget.replenish_per_hour",
			Message: "must not be negative",
		})
	}

	return errs
}

func validatePacing(cfg *PacingConfig) []FieldError {
	var errs []FieldError

	if cfg.Capacity < 0 {
		errs = append(errs, FieldError{
			Field:   "pacing.capacity",
			Message: "must not be negative",
		})
	}
	if cfg.RefillPerMinute <= 0 {
		errs = append(errs, FieldError{
			Field:   "pacing.refill_per_minute",
			Message: "must be positive",
		})
	}
	if cfg.CriticalThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "pacing.critical_threshold",
			Message: "must not be negative",
		})
	}

	// The threshold ordering invariant: critical < warning < capacity.
	if cfg.CriticalThreshold >= cfg.WarningThreshold {
		errs = append(errs, FieldError{
			Field:   "pacing.critical_threshold",
			Message: fmt.Sprintf("must be below warning_threshold (%g >= %g)", cfg.CriticalThreshold, cfg.WarningThreshold),
		})
	}
	if cfg.WarningThreshold >= cfg.Capacity {
		errs = append(errs, FieldError{
			Field:   "pacing.warning_threshold",
			Message: fmt.Sprintf("must be below capacity (%g >= %g)", cfg.WarningThreshold, cfg.Capacity),
		})
	}

	if cfg.Cooldown <= 0 {
		errs = append(errs, FieldError{
			Field:   "pacing.cooldown",
			Message: "must be positive",
		})
	}

	return errs
}

func validateCosts(costs []ActionCostConfig, capacity float64) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(costs))
	for i, c := range costs {
		field := fmt.Sprintf("costs[%d]", i)

		if c.Name == "" {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: "must not be empty",
			})
			continue
		}
		if seen[c.Name] {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate action %q", c.Name),
			})
		}
		seen[c.Name] = true

		if c.Cost < 0 {
			errs = append(errs, FieldError{
				Field:   field + ".cost",
				Message: "must not be negative",
			})
		}
		// A single action costing more than the bucket can ever hold
		// would wait forever in the pacer.
		if float64(c.Cost) > capacity {
			errs = append(errs, FieldError{
				Field:   field + ".cost",
				Message: fmt.Sprintf("action %q cost %d exceeds pacing capacity %g", c.Name, c.Cost, capacity),
			})
		}
		if !validActionCategories[c.Category] {
			errs = append(errs, FieldError{
				Field:   field + ".category",
				Message: fmt.Sprintf("must be one of single, composite, batch (got %q)", c.Category),
			})
		}
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case AuditBackendMemory, AuditBackendSQLite:
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("must be \"memory\" or \"sqlite\" (got %q)", cfg.Backend),
		})
	}

	if cfg.Backend == AuditBackendSQLite && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite_path",
			Message: "must not be empty when backend is sqlite",
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "must not be negative",
		})
	}

	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error (got %q)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be \"json\" or \"text\" (got %q)", cfg.Logging.Format),
		})
	}

	return errs
}

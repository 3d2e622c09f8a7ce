package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{
		Provider: ProviderConfig{
			BalanceURL: "https://api.example.com/v1/balance",
			Timeout:    5 * time.Second,
		},
		Pacing: PacingConfig{
			Capacity:          1000,
			RefillPerMinute:   25,
			WarningThreshold:  300,
			CriticalThreshold: 100,
			Cooldown:          30 * time.Second,
		},
		Costs: []ActionCostConfig{
			{Name: "product_lookup", Cost: 1, Category: "single"},
			{Name: "market_scan", Cost: 200, Category: "batch"},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty listen address",
			mutate: func(c *Config) { c.Admin.ListenAddress = "" },
			field:  "admin.listen_address",
		},
		{
			name:   "missing balance URL",
			mutate: func(c *Config) { c.Provider.BalanceURL = "" },
			field:  "provider.balance_url",
		},
		{
			name:   "malformed balance URL",
			mutate: func(c *Config) { c.Provider.BalanceURL = "not-a-url" },
			field:  "provider.balance_url",
		},
		{
			name:   "invalid poll schedule",
			mutate: func(c *Config) { c.Provider.PollSchedule = "every 5 minutes" },
			field:  "provider.poll_schedule",
		},
		{
			name:   "negative floor",
			mutate: func(c *Config) { c.Budget.CircuitBreakerFloor = -1 },
			field:  "budget.circuit_breaker_floor",
		},
		{
			name:   "zero refill rate",
			mutate: func(c *Config) { c.Pacing.RefillPerMinute = 0 },
			field:  "pacing.refill_per_minute",
		},
		{
			name:   "critical at warning",
			mutate: func(c *Config) { c.Pacing.CriticalThreshold = c.Pacing.WarningThreshold },
			field:  "pacing.critical_threshold",
		},
		{
			name:   "warning at capacity",
			mutate: func(c *Config) { c.Pacing.WarningThreshold = c.Pacing.Capacity },
			field:  "pacing.warning_threshold",
		},
		{
			name:   "duplicate action",
			mutate: func(c *Config) { c.Costs = append(c.Costs, ActionCostConfig{Name: "product_lookup", Cost: 2, Category: "single"}) },
			field:  "costs[2].name",
		},
		{
			name:   "negative cost",
			mutate: func(c *Config) { c.Costs[0].Cost = -1 },
			field:  "costs[0].cost",
		},
		{
			name:   "cost above pacing capacity",
			mutate: func(c *Config) { c.Costs[1].Cost = 5000 },
			field:  "costs[1].cost",
		},
		{
			name:   "invalid category",
			mutate: func(c *Config) { c.Costs[0].Category = "bulk" },
			field:  "costs[0].category",
		},
		{
			name:   "unknown audit backend",
			mutate: func(c *Config) { c.Audit.Backend = "postgres" },
			field:  "audit.backend",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Audit.Backend = AuditBackendSQLite
				c.Audit.SQLitePath = ""
			},
			field: "audit.sqlite_path",
		},
		{
			name:   "invalid prune schedule",
			mutate: func(c *Config) { c.Audit.PruneSchedule = "3am daily" },
			field:  "audit.prune_schedule",
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			field:  "telemetry.logging.level",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Telemetry.Logging.Format = "logfmt" },
			field:  "telemetry.logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}

			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}

			found := false
			for _, fieldErr := range validationErr.Errors {
				if fieldErr.Field == tt.field {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected error on field %q, got %v", tt.field, validationErr.Errors)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.ListenAddress = ""
	cfg.Provider.BalanceURL = ""
	cfg.Pacing.RefillPerMinute = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 3 {
		t.Errorf("Expected at least 3 field errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "errors") {
		t.Errorf("Expected multi-error message, got %q", validationErr.Error())
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{{Field: "pacing.capacity", Message: "must not be negative"}}}
	if !strings.Contains(err.Error(), "pacing.capacity") {
		t.Errorf("Expected field in message, got %q", err.Error())
	}
}

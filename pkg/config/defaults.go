package config

import "time"

// Supported audit backends.
const (
	AuditBackendMemory = "memory"
	AuditBackendSQLite = "sqlite"
)

// Default values for configuration fields.
const (
	// Admin defaults
	DefaultListenAddress   = "127.0.0.1:9090"
	DefaultShutdownTimeout = 10 * time.Second

	// Provider defaults
	DefaultProviderTimeout = 10 * time.Second
	DefaultPollSchedule    = "*/5 * * * *"

	// Budget defaults
	DefaultCircuitBreakerFloor = int64(500)

	// Pacing defaults
	DefaultPacingCapacity    = 2000.0
	DefaultRefillPerMinute   = 25.0
	DefaultWarningThreshold  = 500.0
	DefaultCriticalThreshold = 200.0
	DefaultCooldown          = 30 * time.Second

	// Audit defaults
	DefaultAuditBackend  = AuditBackendMemory
	DefaultSQLitePath    = "data/audit.db"
	DefaultRetentionDays = 30
	DefaultPruneSchedule = "0 3 * * *"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultActionCategory is assigned to cost entries without a category.
const DefaultActionCategory = "single"

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place. Zero values are considered unset
// for all fields with non-zero defaults.
func ApplyDefaults(cfg *Config) {
	// Admin defaults
	if cfg.Admin.ListenAddress == "" {
		cfg.Admin.ListenAddress = DefaultListenAddress
	}
	if cfg.Admin.ShutdownTimeout == 0 {
		cfg.Admin.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Provider defaults
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}
	if cfg.Provider.PollSchedule == "" {
		cfg.Provider.PollSchedule = DefaultPollSchedule
	}

	// Budget defaults
	if cfg.Budget.CircuitBreakerFloor == 0 {
		cfg.Budget.CircuitBreakerFloor = DefaultCircuitBreakerFloor
	}

	// Pacing defaults
	if cfg.Pacing.Capacity == 0 {
		cfg.Pacing.Capacity = DefaultPacingCapacity
	}
	if cfg.Pacing.RefillPerMinute == 0 {
		cfg.Pacing.RefillPerMinute = DefaultRefillPerMinute
	}
	if cfg.Pacing.WarningThreshold == 0 {
		cfg.Pacing.WarningThreshold = DefaultWarningThreshold
	}
	if cfg.Pacing.CriticalThreshold == 0 {
		cfg.Pacing.CriticalThreshold = DefaultCriticalThreshold
	}
	if cfg.Pacing.Cooldown == 0 {
		cfg.Pacing.Cooldown = DefaultCooldown
	}

	// Cost entry defaults
	for i := range cfg.Costs {
		if cfg.Costs[i].Category == "" {
			cfg.Costs[i].Category = DefaultActionCategory
		}
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultSQLitePath
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultPruneSchedule
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
}

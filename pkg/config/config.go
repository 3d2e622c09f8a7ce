package config

import "time"

// Config is the root configuration structure for creditgate.
// It contains all configuration sections for the admin server, the data
// provider integration, budget admission, request pacing, the action cost
// table, audit storage, and telemetry.
type Config struct {
	// Admin contains the admin HTTP server configuration (health and
	// metrics endpoints).
	Admin AdminConfig `yaml:"admin"`

	// Provider contains configuration for the external data provider
	// whose credit quota this system protects.
	Provider ProviderConfig `yaml:"provider"`

	// Budget contains admission-level budget settings, including the
	// global circuit breaker floor.
	Budget BudgetConfig `yaml:"budget"`

	// Pacing contains the token bucket settings governing the pace of
	// low-level outbound calls.
	Pacing PacingConfig `yaml:"pacing"`

	// Costs is the action cost table. Each referenced business action
	// must have exactly one entry; the table is immutable after startup.
	Costs []ActionCostConfig `yaml:"costs"`

	// Audit contains configuration for refusal/skip audit storage.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch enables hot-reloading of threshold settings when the
	// configuration file changes. Cost entries are never hot-reloaded.
	// Default: false
	Watch bool `yaml:"watch"`
}

// AdminConfig contains configuration for the admin HTTP server.
type AdminConfig struct {
	// ListenAddress is the address and port for the admin server.
	// Format: "host:port". Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProviderConfig contains configuration for the external data provider.
type ProviderConfig struct {
	// BalanceURL is the provider's balance-check endpoint.
	BalanceURL string `yaml:"balance_url"`

	// APIKey authenticates balance-check requests. May be supplied via
	// the CREDITGATE_PROVIDER_API_KEY environment variable instead.
	APIKey string `yaml:"api_key"`

	// Timeout is the per-request timeout for balance checks.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// PollSchedule is a cron expression for background balance
	// observation feeding metrics and health checks. Empty disables
	// polling. Default: "*/5 * * * *" (every five minutes)
	PollSchedule string `yaml:"poll_schedule"`
}

// BudgetConfig contains admission-level budget settings.
type BudgetConfig struct {
	// CircuitBreakerFloor is the absolute credit reserve. When the
	// observed balance is below this floor, every action is refused
	// regardless of its individual cost. Default: 500
	CircuitBreakerFloor int64 `yaml:"circuit_breaker_floor"`

	// ReplenishPerHour is the rate at which the provider restores
	// credits, used to compute retry hints on refusals. Zero means the
	// rate is unknown and a conservative default hint is used.
	ReplenishPerHour int64 `yaml:"replenish_per_hour"`
}

// PacingConfig contains the token bucket settings for call pacing.
// The bucket is independent of the provider-reported balance; it exists
// purely to smooth the rate of outbound calls.
type PacingConfig struct {
	// Capacity is the maximum number of tokens the bucket holds.
	// Default: 2000
	Capacity float64 `yaml:"capacity"`

	// RefillPerMinute is the rate at which tokens are restored.
	// Must be positive. Default: 25
	RefillPerMinute float64 `yaml:"refill_per_minute"`

	// WarningThreshold marks the level below which the bucket reports
	// itself unhealthy. Must satisfy critical < warning < capacity.
	// Default: 500
	WarningThreshold float64 `yaml:"warning_threshold"`

	// CriticalThreshold marks the level below which acquire calls pause
	// for a cooldown instead of proceeding. Default: 200
	CriticalThreshold float64 `yaml:"critical_threshold"`

	// Cooldown is how long an acquire pauses when the bucket is below
	// the critical threshold. Default: 30s
	Cooldown time.Duration `yaml:"cooldown"`
}

// ActionCostConfig declares the credit cost of one business action.
type ActionCostConfig struct {
	// Name uniquely identifies the action (e.g. "product_lookup").
	Name string `yaml:"name"`

	// Cost is the estimated total provider credits the action consumes,
	// including headroom for multi-call composite actions.
	Cost int64 `yaml:"cost"`

	// Description explains what the action does.
	Description string `yaml:"description"`

	// Category classifies the action: "single", "composite", or "batch".
	// Default: "single"
	Category string `yaml:"category"`
}

// AuditConfig contains configuration for refusal/skip audit storage.
type AuditConfig struct {
	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how long audit records are kept before pruning.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables scheduled pruning. Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

package config

import (
	"fmt"
	"sync"
)

// Thresholds is the single validated threshold object shared by the pacing
// bucket and the admission guard. Both components hold a reference to the
// same instance, so tuning happens in exactly one place.
//
// The two protection tiers are related but independently tunable: the
// critical threshold makes the pacer wait, the circuit breaker floor makes
// the guard refuse. Capacity is fixed for the lifetime of the process;
// warning, critical, and the floor may be updated at runtime (hot reload).
type Thresholds struct {
	mu       sync.RWMutex
	capacity float64
	warning  float64
	critical float64
	floor    int64
}

// NewThresholds creates a validated threshold set.
// The ordering invariant critical < warning < capacity is enforced here and
// on every subsequent Update.
func NewThresholds(capacity, warning, critical float64, floor int64) (*Thresholds, error) {
	if err := checkThresholdOrder(capacity, warning, critical, floor); err != nil {
		return nil, err
	}
	return &Thresholds{
		capacity: capacity,
		warning:  warning,
		critical: critical,
		floor:    floor,
	}, nil
}

// ThresholdsFromConfig builds the shared threshold object from a validated
// configuration.
func ThresholdsFromConfig(cfg *Config) (*Thresholds, error) {
	return NewThresholds(
		cfg.Pacing.Capacity,
		cfg.Pacing.WarningThreshold,
		cfg.Pacing.CriticalThreshold,
		cfg.Budget.CircuitBreakerFloor,
	)
}

// Capacity returns the fixed bucket capacity.
func (t *Thresholds) Capacity() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.capacity
}

// Warning returns the current warning threshold.
func (t *Thresholds) Warning() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.warning
}

// Critical returns the current critical threshold.
func (t *Thresholds) Critical() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.critical
}

// Floor returns the current circuit breaker floor in provider credits.
func (t *Thresholds) Floor() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.floor
}

// Update replaces the tunable thresholds after re-validating the ordering
// invariant against the fixed capacity. Capacity itself cannot change at
// runtime; resizing the bucket requires a restart.
func (t *Thresholds) Update(warning, critical float64, floor int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := checkThresholdOrder(t.capacity, warning, critical, floor); err != nil {
		return err
	}

	t.warning = warning
	t.critical = critical
	t.floor = floor
	return nil
}

func checkThresholdOrder(capacity, warning, critical float64, floor int64) error {
	if capacity < 0 {
		return fmt.Errorf("capacity must not be negative (got %g)", capacity)
	}
	if critical < 0 {
		return fmt.Errorf("critical threshold must not be negative (got %g)", critical)
	}
	if floor < 0 {
		return fmt.Errorf("circuit breaker floor must not be negative (got %d)", floor)
	}
	if critical >= warning {
		return fmt.Errorf("critical threshold must be below warning threshold (%g >= %g)", critical, warning)
	}
	if warning >= capacity {
		return fmt.Errorf("warning threshold must be below capacity (%g >= %g)", warning, capacity)
	}
	return nil
}

package admission

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"atlas-hq/creditgate/pkg/budget/costs"
	"atlas-hq/creditgate/pkg/config"
)

// stubBalance is a BalanceSource with a settable balance or failure.
type stubBalance struct {
	balance atomic.Int64
	fail    atomic.Bool
}

var errProviderDown = errors.New("provider balance unavailable: connection refused")

func (s *stubBalance) CurrentBalance(ctx context.Context) (int64, error) {
	if s.fail.Load() {
		return 0, errProviderDown
	}
	return s.balance.Load(), nil
}

func newTestGuard(t *testing.T, floor int64, replenishPerHour int64) (*Guard, *stubBalance) {
	t.Helper()

	registry := costs.NewRegistry()
	entries := []costs.ActionCost{
		{Name: "product_lookup", Cost: 1, Category: costs.CategorySingle},
		{Name: "surprise_me", Cost: 50, Category: costs.CategoryComposite},
		{Name: "market_scan", Cost: 200, Category: costs.CategoryBatch},
	}
	for _, e := range entries {
		if err := registry.Register(e); err != nil {
			t.Fatalf("Register(%q) failed: %v", e.Name, err)
		}
	}

	thresholds, err := config.NewThresholds(1000, 100, 50, floor)
	if err != nil {
		t.Fatalf("NewThresholds failed: %v", err)
	}

	balance := &stubBalance{}
	return NewGuard(registry, balance, thresholds, replenishPerHour, nil), balance
}

func TestGuard_AdmitsWhenBalanceCovers(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(100)

	decision, err := g.Check(context.Background(), "surprise_me")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !decision.CanProceed {
		t.Error("Expected admission with balance 100 and cost 50")
	}
	if decision.Balance != 100 || decision.Required != 50 {
		t.Errorf("Unexpected decision: %+v", decision)
	}
	if decision.Deficit() != 0 {
		t.Errorf("Expected deficit 0, got %d", decision.Deficit())
	}
}

func TestGuard_RefusesWithDeficit(t *testing.T) {
	// Oracle reports 15, registry costs "surprise_me" at 50.
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(15)

	decision, err := g.Check(context.Background(), "surprise_me")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if decision.CanProceed {
		t.Error("Expected refusal with balance 15 and cost 50")
	}
	if decision.Balance != 15 || decision.Required != 50 {
		t.Errorf("Unexpected decision: %+v", decision)
	}
	if decision.Deficit() != 35 {
		t.Errorf("Expected deficit 35, got %d", decision.Deficit())
	}
}

func TestGuard_MonotonicAdmission(t *testing.T) {
	// After the balance rises by at least the reported deficit, the same
	// check must admit.
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(15)

	decision, err := g.Check(context.Background(), "surprise_me")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if decision.CanProceed {
		t.Fatal("Expected initial refusal")
	}

	balance.balance.Store(15 + decision.Deficit())

	decision, err = g.Check(context.Background(), "surprise_me")
	if err != nil {
		t.Fatalf("Second check failed: %v", err)
	}
	if !decision.CanProceed {
		t.Errorf("Expected admission after balance rose by deficit, got %+v", decision)
	}
}

func TestGuard_CircuitBreakerDominates(t *testing.T) {
	// Floor 20, balance 15, cost 1: refused even though balance >= cost.
	g, balance := newTestGuard(t, 20, 0)
	balance.balance.Store(15)

	decision, err := g.Check(context.Background(), "product_lookup")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if decision.CanProceed {
		t.Error("Expected circuit breaker refusal below floor")
	}

	refusal := g.Refusal("product_lookup", decision)
	if refusal.Deficit != 5 {
		t.Errorf("Expected floor shortfall deficit 5, got %d", refusal.Deficit)
	}
}

func TestGuard_AdmitsAtFloor(t *testing.T) {
	g, balance := newTestGuard(t, 20, 0)
	balance.balance.Store(20)

	decision, err := g.Check(context.Background(), "product_lookup")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !decision.CanProceed {
		t.Error("Expected admission at exactly the floor")
	}
}

func TestGuard_UnknownActionFailsFast(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(1000000)

	decision, err := g.Check(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("Expected error for unknown action")
	}
	if !errors.Is(err, costs.ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
	if decision != nil {
		t.Errorf("Unknown action must never produce a decision, got %+v", decision)
	}
}

func TestGuard_OracleFailureFailsClosed(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.fail.Store(true)

	decision, err := g.Check(context.Background(), "product_lookup")
	if err == nil {
		t.Fatal("Expected error when provider unreachable")
	}
	if !errors.Is(err, errProviderDown) {
		t.Errorf("Expected provider error surfaced, got %v", err)
	}
	if decision == nil || decision.CanProceed {
		t.Errorf("Expected fail-closed refusal, got %+v", decision)
	}
}

func TestGuard_RetryHint(t *testing.T) {
	g, balance := newTestGuard(t, 0, 100) // 100 credits/hour
	balance.balance.Store(15)

	decision, err := g.Check(context.Background(), "surprise_me")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	refusal := g.Refusal("surprise_me", decision)
	// Deficit 35 at 100 credits/hour is 21 minutes.
	if refusal.RetryAfter != 21*time.Minute {
		t.Errorf("Expected retry hint 21m, got %v", refusal.RetryAfter)
	}
}

func TestGuard_RetryHintDefaultWhenRateUnknown(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(15)

	decision, err := g.Check(context.Background(), "surprise_me")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	refusal := g.Refusal("surprise_me", decision)
	if refusal.RetryAfter != defaultRetryHint {
		t.Errorf("Expected default retry hint, got %v", refusal.RetryAfter)
	}
}

func TestGuard_FloorReloadTakesEffect(t *testing.T) {
	// The guard reads the floor through the shared thresholds object, so
	// a hot-reloaded floor applies to the next check.
	registry := costs.NewRegistry()
	if err := registry.Register(costs.ActionCost{Name: "product_lookup", Cost: 1}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	thresholds, err := config.NewThresholds(1000, 100, 50, 10)
	if err != nil {
		t.Fatalf("NewThresholds failed: %v", err)
	}

	balance := &stubBalance{}
	balance.balance.Store(15)
	g := NewGuard(registry, balance, thresholds, 0, nil)

	decision, err := g.Check(context.Background(), "product_lookup")
	if err != nil || !decision.CanProceed {
		t.Fatalf("Expected admission above floor 10: %+v, %v", decision, err)
	}

	if err := thresholds.Update(100, 50, 20); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	decision, err = g.Check(context.Background(), "product_lookup")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if decision.CanProceed {
		t.Error("Expected refusal after floor rose above balance")
	}
}

package admission

import (
	"context"
	"errors"
	"testing"
)

func TestRequire_RunsOperationWhenAdmitted(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(100)

	ran := false
	err := g.Require(context.Background(), "surprise_me", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Require failed: %v", err)
	}
	if !ran {
		t.Error("Expected operation to run")
	}
}

func TestRequire_AbortsBeforeSideEffects(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(15)

	ran := false
	err := g.Require(context.Background(), "surprise_me", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err == nil {
		t.Fatal("Expected refusal")
	}
	if ran {
		t.Error("Operation must not run on refusal")
	}

	var refusal *RefusalError
	if !errors.As(err, &refusal) {
		t.Fatalf("Expected *RefusalError, got %T", err)
	}
	if !errors.Is(err, ErrInsufficientBudget) {
		t.Error("Expected errors.Is match on ErrInsufficientBudget")
	}
	if refusal.Balance != 15 || refusal.Required != 50 || refusal.Deficit != 35 {
		t.Errorf("Unexpected refusal payload: %+v", refusal)
	}
}

func TestRequire_PropagatesOperationError(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(100)

	opErr := errors.New("fetch failed")
	err := g.Require(context.Background(), "surprise_me", func(ctx context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("Expected operation error, got %v", err)
	}
}

func TestRequire_UnknownActionIsNotARefusal(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(100)

	err := g.Require(context.Background(), "nonexistent", func(ctx context.Context) error {
		t.Error("Operation must not run for unknown action")
		return nil
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if errors.Is(err, ErrInsufficientBudget) {
		t.Error("Unknown action must surface as a configuration error, not a budget refusal")
	}
}

func TestRequire_OracleFailureFailsClosed(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.fail.Store(true)

	err := g.Require(context.Background(), "product_lookup", func(ctx context.Context) error {
		t.Error("Operation must not run when balance is unknowable")
		return nil
	})
	if !errors.Is(err, errProviderDown) {
		t.Errorf("Expected the provider error surfaced distinctly, got %v", err)
	}
}

func TestAttempt_SkipsOnRefusalAndBatchContinues(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(60)

	// A batch where the second item can no longer afford its action.
	items := []string{"surprise_me", "market_scan", "product_lookup"}

	var completed, skipped int
	for _, action := range items {
		outcome := g.Attempt(context.Background(), action, func(ctx context.Context) error {
			return nil
		})
		switch {
		case outcome.Skipped:
			skipped++
			if outcome.Refusal == nil {
				t.Error("Skipped outcome must carry refusal detail")
			}
		case outcome.Err != nil:
			t.Fatalf("Attempt(%q) errored: %v", action, outcome.Err)
		default:
			completed++
		}
	}

	if completed != 2 || skipped != 1 {
		t.Errorf("Expected 2 completed and 1 skipped, got %d/%d", completed, skipped)
	}
}

func TestAttempt_RunsOperation(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(100)

	opErr := errors.New("partial failure")
	outcome := g.Attempt(context.Background(), "surprise_me", func(ctx context.Context) error {
		return opErr
	})
	if outcome.Skipped {
		t.Error("Expected operation to run")
	}
	if !errors.Is(outcome.Err, opErr) {
		t.Errorf("Expected operation error in outcome, got %v", outcome.Err)
	}
}

func TestAttempt_UnknownActionSurfacesError(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(100)

	outcome := g.Attempt(context.Background(), "nonexistent", func(ctx context.Context) error {
		return nil
	})
	if outcome.Skipped {
		t.Error("Unknown action is a caller bug, not a skip")
	}
	if outcome.Err == nil {
		t.Error("Expected configuration error in outcome")
	}
}

func TestAttempt_OracleFailureSkips(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.fail.Store(true)

	outcome := g.Attempt(context.Background(), "product_lookup", func(ctx context.Context) error {
		t.Error("Operation must not run when balance is unknowable")
		return nil
	})
	if !outcome.Skipped {
		t.Error("Expected skip when provider unreachable (fail closed)")
	}
}

func TestRefusalHook_Invoked(t *testing.T) {
	g, balance := newTestGuard(t, 0, 0)
	balance.balance.Store(15)

	var gotMode Mode
	var gotAction string
	g.SetRefusalHook(func(ctx context.Context, mode Mode, refusal *RefusalError) {
		gotMode = mode
		gotAction = refusal.Action
	})

	_ = g.Require(context.Background(), "surprise_me", func(ctx context.Context) error { return nil })
	if gotMode != ModeHard || gotAction != "surprise_me" {
		t.Errorf("Expected hard-mode hook for surprise_me, got %s/%s", gotMode, gotAction)
	}

	g.Attempt(context.Background(), "surprise_me", func(ctx context.Context) error { return nil })
	if gotMode != ModeSoft {
		t.Errorf("Expected soft-mode hook, got %s", gotMode)
	}
}

package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// stubClient is a BalanceClient returning a settable balance or error.
type stubClient struct {
	balance atomic.Int64
	err     atomic.Value // error
	calls   atomic.Int64
}

func (s *stubClient) RemainingBalance(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	if err, ok := s.err.Load().(error); ok && err != nil {
		return 0, err
	}
	return s.balance.Load(), nil
}

func TestOracle_CurrentBalance(t *testing.T) {
	client := &stubClient{}
	client.balance.Store(1500)

	o := New(client, nil)

	balance, err := o.CurrentBalance(context.Background())
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if balance != 1500 {
		t.Errorf("Expected balance 1500, got %d", balance)
	}

	snap, ok := o.LastSnapshot()
	if !ok {
		t.Fatal("Expected snapshot after successful observation")
	}
	if snap.Balance != 1500 {
		t.Errorf("Expected snapshot balance 1500, got %d", snap.Balance)
	}
	if time.Since(snap.ObservedAt) > time.Second {
		t.Errorf("Snapshot timestamp too old: %v", snap.ObservedAt)
	}
}

func TestOracle_ReobservesEveryCall(t *testing.T) {
	client := &stubClient{}
	client.balance.Store(100)

	o := New(client, nil)

	for i := 0; i < 3; i++ {
		if _, err := o.CurrentBalance(context.Background()); err != nil {
			t.Fatalf("CurrentBalance failed: %v", err)
		}
	}

	if got := client.calls.Load(); got != 3 {
		t.Errorf("Expected 3 provider calls, got %d", got)
	}
}

func TestOracle_UnavailableIsDistinctFromZero(t *testing.T) {
	client := &stubClient{}
	client.err.Store(errors.New("connection refused"))

	o := New(client, nil)

	_, err := o.CurrentBalance(context.Background())
	if err == nil {
		t.Fatal("Expected error when provider unreachable")
	}
	if !errors.Is(err, ErrBalanceUnavailable) {
		t.Errorf("Expected ErrBalanceUnavailable, got %v", err)
	}

	// No snapshot recorded on failure.
	if _, ok := o.LastSnapshot(); ok {
		t.Error("Expected no snapshot after failed observation")
	}
}

func TestOracle_FailureKeepsLastSnapshot(t *testing.T) {
	client := &stubClient{}
	client.balance.Store(800)

	o := New(client, nil)

	if _, err := o.CurrentBalance(context.Background()); err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}

	client.err.Store(errors.New("timeout"))
	if _, err := o.CurrentBalance(context.Background()); err == nil {
		t.Fatal("Expected error")
	}

	snap, ok := o.LastSnapshot()
	if !ok || snap.Balance != 800 {
		t.Errorf("Expected last good snapshot 800 preserved, got %+v (ok=%v)", snap, ok)
	}
}

func TestOracle_HealthCheck(t *testing.T) {
	client := &stubClient{}
	client.balance.Store(10)

	o := New(client, nil)
	check := o.HealthCheck()

	if err := check(context.Background()); err != nil {
		t.Errorf("Expected healthy, got %v", err)
	}

	client.err.Store(errors.New("boom"))
	if err := check(context.Background()); err == nil {
		t.Error("Expected unhealthy when provider fails")
	}
}

package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// backendFactories lets the shared behavior tests run against both backends.
func backendFactories(t *testing.T) map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			return NewMemoryBackend()
		},
		"sqlite": func(t *testing.T) Backend {
			dbPath := filepath.Join(t.TempDir(), "audit.db")
			backend, err := NewSQLiteBackend(dbPath)
			if err != nil {
				t.Fatalf("NewSQLiteBackend failed: %v", err)
			}
			return backend
		},
	}
}

func TestBackend_RecordAndRecent(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			backend := factory(t)
			defer backend.Close()

			ctx := context.Background()
			for i, action := range []string{"market_scan", "surprise_me", "product_lookup"} {
				err := backend.Record(ctx, &Record{
					Time:     time.Now().Add(time.Duration(i) * time.Millisecond),
					Action:   action,
					Mode:     "soft",
					Balance:  15,
					Required: 50,
					Deficit:  35,
				})
				if err != nil {
					t.Fatalf("Record failed: %v", err)
				}
			}

			recent, err := backend.Recent(ctx, 2)
			if err != nil {
				t.Fatalf("Recent failed: %v", err)
			}
			if len(recent) != 2 {
				t.Fatalf("Expected 2 records, got %d", len(recent))
			}
			// Newest first.
			if recent[0].Action != "product_lookup" {
				t.Errorf("Expected newest record first, got %q", recent[0].Action)
			}
			if recent[0].ID == "" {
				t.Error("Expected generated record ID")
			}
			if recent[0].Balance != 15 || recent[0].Required != 50 || recent[0].Deficit != 35 {
				t.Errorf("Record payload mismatch: %+v", recent[0])
			}
		})
	}
}

func TestBackend_Prune(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			backend := factory(t)
			defer backend.Close()

			ctx := context.Background()
			old := time.Now().Add(-48 * time.Hour)
			recent := time.Now()

			for _, at := range []time.Time{old, old, recent} {
				err := backend.Record(ctx, &Record{
					Time: at, Action: "market_scan", Mode: "soft",
				})
				if err != nil {
					t.Fatalf("Record failed: %v", err)
				}
			}

			deleted, err := backend.Prune(ctx, time.Now().Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("Prune failed: %v", err)
			}
			if deleted != 2 {
				t.Errorf("Expected 2 pruned, got %d", deleted)
			}

			remaining, err := backend.Recent(ctx, 10)
			if err != nil {
				t.Fatalf("Recent failed: %v", err)
			}
			if len(remaining) != 1 {
				t.Errorf("Expected 1 remaining record, got %d", len(remaining))
			}
		})
	}
}

func TestMemoryBackend_Bounded(t *testing.T) {
	backend := NewMemoryBackendWithSize(5)
	defer backend.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := backend.Record(ctx, &Record{Action: "market_scan", Mode: "soft"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := backend.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 5 {
		t.Errorf("Expected eviction to bound records at 5, got %d", len(recent))
	}
}

func TestMemoryBackend_UseAfterClose(t *testing.T) {
	backend := NewMemoryBackend()
	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := backend.Record(context.Background(), &Record{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if _, err := backend.Recent(context.Background(), 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestSQLiteBackend_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	backend, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	if err := backend.Record(ctx, &Record{Action: "market_scan", Mode: "hard", Deficit: 185}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].Deficit != 185 {
		t.Errorf("Expected persisted record after reopen, got %+v", recent)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	s := NewScheduler(backend, 24*time.Hour, "bogus")
	if err := s.Start(context.Background()); err == nil {
		t.Error("Expected error for invalid cron expression")
	}
}

func TestScheduler_DisabledWithoutSchedule(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	s := NewScheduler(backend, 24*time.Hour, "")
	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start with empty schedule should be a no-op, got %v", err)
	}
	s.Stop()
}

package audit

import (
	"context"
	"errors"
	"time"
)

// Record is one refusal or batch skip, kept for later audit.
// Soft-mode skips especially need a trail: a batch that quietly skipped
// half its items overnight must be explainable the next morning.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Time is when the refusal happened.
	Time time.Time `json:"time"`

	// Action is the refused action name.
	Action string `json:"action"`

	// Mode is the enforcement mode, "hard" or "soft".
	Mode string `json:"mode"`

	// Balance is the provider-reported balance at check time.
	Balance int64 `json:"balance"`

	// Required is the registered cost of the action.
	Required int64 `json:"required"`

	// Deficit is the credit shortfall that blocked admission.
	Deficit int64 `json:"deficit"`
}

// Backend persists refusal records. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Record stores one refusal record.
	Record(ctx context.Context, rec *Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*Record, error)

	// Prune removes records older than the given time, returning the
	// number deleted.
	Prune(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases backend resources. The backend must not be used
	// after Close.
	Close() error
}

// ErrClosed is returned when a backend is used after Close.
var ErrClosed = errors.New("audit backend closed")

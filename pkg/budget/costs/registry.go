package costs

import (
	"errors"
	"fmt"
	"sort"
)

// Category classifies an action by its call shape.
type Category string

const (
	// CategorySingle is one provider call.
	CategorySingle Category = "single"

	// CategoryComposite is a business operation spanning several calls.
	CategoryComposite Category = "composite"

	// CategoryBatch is an unattended bulk operation.
	CategoryBatch Category = "batch"
)

// ActionCost declares the credit cost of one business action.
// Costs are business estimates of the total provider credits an action is
// expected to consume, including headroom for multi-call composite actions.
// They are deliberately decoupled from the pacing bucket so cost estimates
// can be tuned without touching pacing.
type ActionCost struct {
	// Name uniquely identifies the action.
	Name string `json:"name"`

	// Cost is the estimated provider credits consumed. Never negative.
	Cost int64 `json:"cost"`

	// Description explains what the action does.
	Description string `json:"description,omitempty"`

	// Category classifies the action.
	Category Category `json:"category"`
}

// Error types for registry misuse. Both indicate a deployment or
// programming mistake, never a runtime budget condition.
var (
	// ErrUnknownAction is returned when an action has no cost entry.
	ErrUnknownAction = errors.New("unknown action")

	// ErrDuplicateAction is returned when an action is registered twice.
	ErrDuplicateAction = errors.New("duplicate action registration")
)

// Registry is the static table mapping action names to credit costs.
//
// Registration happens once during startup, before any concurrent use; after
// that the table is immutable and reads need no locking. Referencing an
// action without an entry is a caller bug and fails loudly.
type Registry struct {
	actions map[string]ActionCost
}

// NewRegistry creates an empty cost registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ActionCost),
	}
}

// Register adds one action cost entry. Duplicate names and negative costs
// are configuration errors.
func (r *Registry) Register(action ActionCost) error {
	if action.Name == "" {
		return fmt.Errorf("action name must not be empty")
	}
	if action.Cost < 0 {
		return fmt.Errorf("action %q: cost must not be negative (got %d)", action.Name, action.Cost)
	}
	if action.Category == "" {
		action.Category = CategorySingle
	}
	switch action.Category {
	case CategorySingle, CategoryComposite, CategoryBatch:
	default:
		return fmt.Errorf("action %q: invalid category %q", action.Name, action.Category)
	}

	if _, exists := r.actions[action.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, action.Name)
	}

	r.actions[action.Name] = action
	return nil
}

// CostOf looks up the cost entry for an action.
// An unknown action returns ErrUnknownAction; it never silently admits.
func (r *Registry) CostOf(name string) (ActionCost, error) {
	action, ok := r.actions[name]
	if !ok {
		return ActionCost{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return action, nil
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}

// Actions returns all registered entries sorted by name, for listings and
// startup logging.
func (r *Registry) Actions() []ActionCost {
	out := make([]ActionCost, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

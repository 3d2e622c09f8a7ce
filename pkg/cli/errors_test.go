package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("provider.balance_url", "must not be empty")
	if !strings.Contains(err.Error(), "provider.balance_url") {
		t.Errorf("Expected field in error message, got %q", err.Error())
	}

	err = NewConfigError("", "failed to load config")
	if strings.Contains(err.Error(), "in ") {
		t.Errorf("Expected fieldless message, got %q", err.Error())
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("listener failed")
	err := NewCommandError("run", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected CommandError to unwrap its cause")
	}
	if !strings.Contains(err.Error(), "run") {
		t.Errorf("Expected command name in message, got %q", err.Error())
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("budget check", "action", "market_scan", "cost", 200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "budget check" {
		t.Errorf("Expected msg field, got %v", entry["msg"])
	}
	if entry["action"] != "market_scan" {
		t.Errorf("Expected action attribute, got %v", entry["action"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("refusal recorded")
	if !strings.Contains(buf.String(), "refusal recorded") {
		t.Errorf("Expected message in output, got %q", buf.String())
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("Expected info suppressed at warn level, got %q", buf.String())
	}

	logger.Warn("emitted")
	if !strings.Contains(buf.String(), "emitted") {
		t.Errorf("Expected warn emitted, got %q", buf.String())
	}
}

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New failed with empty config: %v", err)
	}

	logger.Info("default config")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Errorf("Expected JSON by default, got %q", buf.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "trace"}); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New(Config{Format: "logfmt"}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestFor_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(Config{Format: "json", Writer: &buf}); err != nil {
		t.Fatalf("New failed: %v", err)
	}

	For("budget.guard").Info("admission refused")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log line: %v", err)
	}
	if entry["component"] != "budget.guard" {
		t.Errorf("Expected component attribute, got %v", entry["component"])
	}
}

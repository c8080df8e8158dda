package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cl := Component(log, "loader")
	cl.Info().Msg("hidden")
	cl.Warn().Msg("shown")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["component"] != "loader" || entry["level"] != "warn" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected level error")
	}
	if _, err := New(Config{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected format error")
	}
}

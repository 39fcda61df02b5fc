package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWritesMessageAndContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Info("user created", "username", "alice", "admin", false)

	out := buf.String()
	if !strings.Contains(out, "user created") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "alice") {
		t.Errorf("expected key/value context in output, got %q", out)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug("should not appear")
	log.Info("should not appear either")
	log.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("debug/info message leaked through warn-level logger: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected warn message in output, got %q", out)
	}
}

func TestWithAttachesPersistentContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info").With("instance", "prod")

	log.Info("reconcile starting")

	out := buf.String()
	if !strings.Contains(out, "prod") {
		t.Errorf("expected persistent context in output, got %q", out)
	}
}

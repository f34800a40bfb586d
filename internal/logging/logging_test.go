package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown", "n", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry passed a warn filter: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "n=3") {
		t.Errorf("warn entry missing: %q", out)
	}
	if !strings.Contains(out, "level=warn") {
		t.Errorf("level key missing: %q", out)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

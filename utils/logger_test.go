package utils

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLoggerDebugGatedByVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.debug = log.New(&buf, "", 0)

	l.Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("Debug must be silent by default, got %q", buf.String())
	}

	l.SetVerbose(true)
	l.Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("verbose Debug output missing, got %q", buf.String())
	}

	l.SetVerbose(false)
	buf.Reset()
	l.Debug("hidden again")
	if buf.Len() != 0 {
		t.Errorf("Debug must be silent after toggling off, got %q", buf.String())
	}
}

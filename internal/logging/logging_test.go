package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer

	l := New(false, &buf)
	if l.GetLevel() != zerolog.WarnLevel {
		t.Errorf("Expected warn level, got %s", l.GetLevel())
	}
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("Unexpected output: %q", buf.String())
	}

	if got := New(true, &buf).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", got)
	}
	if got := NewServer(false, &buf).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("Expected info level for the server, got %s", got)
	}
	if got := NewServer(true, &buf).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level for a debug server, got %s", got)
	}
}

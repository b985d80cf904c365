package internal

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(ApplicationConfig{LogFormat: LogFormatJSON}, &buf).Info("hello", slog.Int("id", 3))
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"id":3`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	NewLogger(ApplicationConfig{LogFormat: LogFormatText}, &buf).Info("hello", slog.Int("id", 3))
	if !strings.Contains(buf.String(), "id=3") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ApplicationConfig{LogLevel: slog.LevelWarn, LogFormat: LogFormatText}, &buf)
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

package common

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWithOutput_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)

	logger.Info().Str("term", "agent").Msg("Term served")
	logger.Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, `"term":"agent"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, "Term served") {
		t.Errorf("expected message in output, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked at info level: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG") != parseLevel("debug") {
		t.Error("level parsing should be case-insensitive")
	}
	if parseLevel("unknown") != parseLevel("info") {
		t.Error("unknown level should default to info")
	}
	if parseLevel("disabled") != disabledLevel {
		t.Error("disabled should map to the silent level")
	}
}

func TestNewLoggerFromConfig_Disabled(t *testing.T) {
	logger := NewLoggerFromConfig(LoggingConfig{Level: "disabled"})
	if logger == nil {
		t.Fatal("expected logger")
	}
	// Must not panic on a silenced logger.
	logger.Error().Str("k", "v").Msg("dropped")
}

func TestNewLoggerFromConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lexicon.log")
	logger := NewLoggerFromConfig(LoggingConfig{
		Level:    "info",
		Outputs:  []string{"file"},
		FilePath: path,
	})
	logger.Info().Msg("to file")
}

// Package common provides shared utilities for Lexicon
package common

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"
)

// Logger wraps log.Logger to provide a consistent interface
type Logger struct {
	log.Logger
}

// disabledLevel sits above every phuslu level so nothing is emitted.
const disabledLevel = log.PanicLevel + 1

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "disabled", "off", "none":
		return disabledLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates a new console logger with the specified level
func NewLogger(level string) *Logger {
	return NewLoggerFromConfig(LoggingConfig{Level: level, Format: "text", Outputs: []string{"console"}})
}

// NewLoggerWithOutput creates a JSON logger writing to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	return &Logger{Logger: log.Logger{
		Level:      parseLevel(level),
		TimeFormat: time.RFC3339,
		Writer:     &log.IOWriter{Writer: w},
	}}
}

// NewLoggerFromConfig builds a logger from the [logging] config section.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	lvl := parseLevel(cfg.Level)
	if lvl == disabledLevel {
		return NewSilentLogger()
	}

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	var writers log.MultiEntryWriter
	for _, out := range outputs {
		switch strings.ToLower(out) {
		case "console":
			if strings.ToLower(cfg.Format) == "json" {
				writers = append(writers, &log.IOWriter{Writer: os.Stderr})
			} else {
				writers = append(writers, &log.ConsoleWriter{
					Writer:         os.Stderr,
					ColorOutput:    true,
					QuoteString:    true,
					EndWithMessage: true,
				})
			}
		case "file":
			if cfg.FilePath == "" {
				continue
			}
			maxSize := cfg.MaxSizeMB
			if maxSize <= 0 {
				maxSize = 100
			}
			writers = append(writers, &log.FileWriter{
				Filename:     cfg.FilePath,
				MaxSize:      int64(maxSize) * 1024 * 1024,
				MaxBackups:   cfg.MaxBackups,
				EnsureFolder: true,
				LocalTime:    true,
				FileMode:     0o644,
			})
			_ = os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755)
		}
	}

	var writer log.Writer = &writers
	if len(writers) == 1 {
		writer = writers[0]
	}

	return &Logger{Logger: log.Logger{
		Level:      lvl,
		TimeFormat: time.RFC3339,
		Writer:     writer,
	}}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	return &Logger{Logger: log.Logger{
		Level:  disabledLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}}
}

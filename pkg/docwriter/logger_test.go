package docwriter

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name           string
		level          LogLevel
		setupFunc      func(*Logger)
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:  "debug level shows all messages",
			level: LogDebug,
			setupFunc: func(l *Logger) {
				l.Debug("debug message")
				l.Info("info message")
				l.Warn("warn message")
				l.Error("error message")
			},
			expectedOutput: []string{
				"level=DEBUG", "debug message",
				"level=INFO", "info message",
				"level=WARN", "warn message",
				"level=ERROR", "error message",
			},
		},
		{
			name:  "info level hides debug messages",
			level: LogInfo,
			setupFunc: func(l *Logger) {
				l.Debug("debug message")
				l.Info("info message")
			},
			expectedOutput: []string{"info message"},
			notExpected:    []string{"debug message"},
		},
		{
			name:  "off hides everything",
			level: LogOff,
			setupFunc: func(l *Logger) {
				l.Error("error message")
			},
			notExpected: []string{"error message"},
		},
		{
			name:  "fields are attached",
			level: LogInfo,
			setupFunc: func(l *Logger) {
				l.WithField("path", "out.docx").WithFields(Fields{"blocks": 7}).Info("saved", "format", "docx")
			},
			expectedOutput: []string{"path=out.docx", "blocks=7", "format=docx", "msg=saved"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)
			tt.setupFunc(logger)

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("expected output to contain %q, got: %s", expected, output)
				}
			}
			for _, notExpected := range tt.notExpected {
				if strings.Contains(output, notExpected) {
					t.Errorf("expected output NOT to contain %q, got: %s", notExpected, output)
				}
			}
		})
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogWarn)
	if logger.IsDebugMode() {
		t.Error("warn logger should not be in debug mode")
	}

	child := logger.WithField("component", "builder")
	logger.SetLevel(LogDebug)
	if !child.IsDebugMode() {
		t.Error("child logger should share the parent's level")
	}
	child.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestNewLoggerFromSlog(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger := NewLoggerFromSlog(base)

	logger.Debug("hidden by handler")
	logger.Info("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden by handler") {
		t.Errorf("handler level should filter debug, got %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("unexpected JSON output %q", out)
	}
	if logger.Slog() != base {
		t.Error("Slog() should return the wrapped logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		"warning": LogWarn,
		" error ": LogError,
		"off":     LogOff,
		"bogus":   LogInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogInfo))
	GetLogger().Info("global message")
	if !strings.Contains(buf.String(), "global message") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}
}

func TestSetLoggerNil(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil after SetLogger(nil)")
	}

	// a rejection logs through the package logger
	_, err := NewBuilder().AddHeading("x", 99)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("AddHeading error = %v, want ErrInvalidLevel", err)
	}
	GetLogger().Info("discarded")
}

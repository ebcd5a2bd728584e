package docwriter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogOff
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "DEBUG"
	case LogInfo:
		return "INFO"
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	case LogOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// slogLevel maps a LogLevel onto slog. LogOff sits above every level slog emits.
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogInfo:
		return slog.LevelInfo
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelError + 8
	}
}

// ParseLogLevel parses debug, info, warn, error or off. Unknown values map to LogInfo.
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LogDebug
	case "info":
		return LogInfo
	case "warn", "warning":
		return LogWarn
	case "error":
		return LogError
	case "off":
		return LogOff
	default:
		return LogInfo
	}
}

type Fields map[string]interface{}

// Logger is a leveled logger backed by log/slog.
type Logger struct {
	base  *slog.Logger
	level *slog.LevelVar
}

var (
	globalLogger     *Logger
	globalLoggerMu   sync.RWMutex
	globalLoggerOnce sync.Once
)

func initGlobalLogger() {
	globalLoggerOnce.Do(func() {
		level := ParseLogLevel(ConfigFromEnvironment().LogLevel)
		globalLogger = NewLogger(os.Stderr, level)
	})
}

// NewLogger returns a text logger writing to w.
func NewLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = io.Discard
	}
	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())
	return &Logger{
		base:  slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})),
		level: lv,
	}
}

// NewLoggerFromSlog wraps an existing slog.Logger. Level filtering is left to
// the logger's handler; SetLevel additionally drops records below the given level.
func NewLoggerFromSlog(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelDebug)
	return &Logger{base: l, level: lv}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return NewLogger(io.Discard, LogOff)
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slogLevel())
}

func (l *Logger) IsDebugMode() bool {
	return l.enabled(slog.LevelDebug)
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.base
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{base: l.base.With(key, value), level: l.level}
}

func (l *Logger) WithFields(fields Fields) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{base: l.base.With(args...), level: l.level}
}

func (l *Logger) enabled(level slog.Level) bool {
	return level >= l.level.Level() && l.base.Enabled(context.Background(), level)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.enabled(level) {
		return
	}
	l.base.Log(context.Background(), level, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

// Global logging functions

// SetLogger replaces the package logger. A nil logger discards output.
func SetLogger(logger *Logger) {
	if logger == nil {
		logger = NopLogger()
	}
	initGlobalLogger()
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = logger
}

func GetLogger() *Logger {
	initGlobalLogger()
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

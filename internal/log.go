package internal

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// ParseLogLevel maps a LOG_LEVEL value to a LogLevel, defaulting to info
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// Logger provides leveled, structured logging on top of zap
type Logger struct {
	level LogLevel
	zl    *zap.Logger
}

// NewLogger creates a new logger with the specified level writing to stderr
func NewLogger(level LogLevel) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.DisableStacktrace = true
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{level: level, zl: zl}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{level: LogLevelError, zl: zap.NewNop()}
}

// FromZap wraps an existing zap logger
func FromZap(zl *zap.Logger, level LogLevel) *Logger {
	return &Logger{level: level, zl: zl}
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{level: l.level, zl: l.zl.With(fields...)}
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...zap.Field) {
	if l.level >= LogLevelError {
		l.zl.Error(msg, fields...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	if l.level >= LogLevelWarn {
		l.zl.Warn(msg, fields...)
	}
}

// Info logs info messages
func (l *Logger) Info(msg string, fields ...zap.Field) {
	if l.level >= LogLevelInfo {
		l.zl.Info(msg, fields...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	if l.level >= LogLevelDebug {
		l.zl.Debug(msg, fields...)
	}
}

// Trace logs trace messages; zap has no trace level so they go out at debug
func (l *Logger) Trace(msg string, fields ...zap.Field) {
	if l.level >= LogLevelTrace {
		l.zl.Debug(msg, fields...)
	}
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()

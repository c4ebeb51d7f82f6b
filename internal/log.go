package internal

import (
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

// ParseLogLevel maps a level name to a LogLevel, defaulting to info
func ParseLogLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
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

// Logger provides leveled logging on top of zap
type Logger struct {
	level LogLevel
	zl    *zap.Logger
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger writing to stderr at the specified level.
// Debug and trace use zap's development encoder.
func NewLogger(level LogLevel) *Logger {
	cfg := zap.NewProductionConfig()
	if level >= LogLevelDebug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return FromZap(zl, level)
}

// FromZap wraps an existing zap logger
func FromZap(zl *zap.Logger, level LogLevel) *Logger {
	return &Logger{level: level, zl: zl, sugar: zl.Sugar()}
}

// NewNopLogger discards everything
func NewNopLogger() *Logger {
	return FromZap(zap.NewNop(), LogLevelError)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Trace logs trace messages; zap has no trace level so they go out as debug
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.sugar.Debugf(format, args...)
	}
}

// With returns a child logger carrying structured fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return FromZap(l.zl.With(fields...), l.level)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

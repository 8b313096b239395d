// Package log provides the process-wide leveled logger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity of logging
type LogLevel string

const (
	// LevelDebug enables all logs
	LevelDebug LogLevel = "debug"
	// LevelInfo enables info, warning, and error logs (default)
	LevelInfo LogLevel = "info"
	// LevelWarn enables only warning and error logs
	LevelWarn LogLevel = "warn"
	// LevelError enables only error logs
	LevelError LogLevel = "error"
)

// Levels lists the accepted level names in increasing severity.
var Levels = []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}

// global logger instance
var (
	globalLogger *zap.SugaredLogger
	globalMutex  sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	Level LogLevel
	// Writer receives log output. Defaults to stderr so command results on
	// stdout stay machine-readable.
	Writer io.Writer
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Writer: os.Stderr,
	}
}

// ParseLevel converts a user-supplied level name.
func ParseLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Levels {
		if l == level {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	if _, err := ParseLevel(string(cfg.Level)); err != nil {
		return err
	}
	logger := createLogger(cfg)

	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = logger
	return nil
}

// mapLevelToZapLevel maps our log level to zap level
func mapLevelToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// encoderConfig is the console layout: time, level, message, fields.
var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "T",
	LevelKey:       "L",
	NameKey:        "N",
	CallerKey:      zapcore.OmitKey,
	FunctionKey:    zapcore.OmitKey,
	MessageKey:     "M",
	StacktraceKey:  zapcore.OmitKey,
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// Get returns the global logger
// If not initialized, it initializes with default config
func Get() *zap.SugaredLogger {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()

	if logger != nil {
		return logger
	}

	loggerToSet := createLogger(DefaultConfig())

	globalMutex.Lock()
	defer globalMutex.Unlock()

	if globalLogger != nil {
		return globalLogger
	}

	globalLogger = loggerToSet
	return globalLogger
}

// createLogger creates a new logger with the given config without acquiring locks
func createLogger(cfg Config) *zap.SugaredLogger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), mapLevelToZapLevel(cfg.Level))
	return zap.New(core).Sugar()
}

// Sync flushes any buffered log entries
func Sync() error {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()

	if logger != nil {
		return logger.Sync()
	}
	return nil
}

// Reset resets the global logger (mainly for testing)
func Reset() {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = nil
}

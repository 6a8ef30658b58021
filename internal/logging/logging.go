// Package logging constructs the process-wide zap logger used by annad
// and annactl. No package-level logger is exposed — callers build one
// and pass it by reference into their components.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger at the given level ("debug", "info",
// "warn", "error"). An unrecognised level falls back to "info".
func New(level string) (*zap.SugaredLogger, error) {
	var zlevel zapcore.Level
	switch level {
	case "debug":
		zlevel = zapcore.DebugLevel
	case "warn":
		zlevel = zapcore.WarnLevel
	case "error":
		zlevel = zapcore.ErrorLevel
	case "", "info":
		zlevel = zapcore.InfoLevel
	default:
		zlevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zlevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, for tests.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

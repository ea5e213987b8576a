// Package logging builds the zap loggers used across the folio tracker.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger, or a console logger in development.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// CronLogger adapts a zap logger to the cron.Logger interface.
type CronLogger struct {
	L *zap.Logger
}

// Info logs routine scheduler messages at debug level.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.L.Sugar().Debugw(msg, keysAndValues...)
}

// Error logs scheduler failures.
func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.L.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

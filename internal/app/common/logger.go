// Package common holds small shared constructors used by every entry point.
package common

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger for the given environment. Development
// gets colored console output; production gets sampled JSON.
func NewLogger(environment string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// MustNewLogger is NewLogger for main functions, panicking on failure.
func MustNewLogger(environment string) *zap.Logger {
	logger, err := NewLogger(environment)
	if err != nil {
		panic(err)
	}
	return logger
}

// Package logging builds the zap loggers used across the board.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encoders understood by New.
const (
	ConsoleEncoder = "console"
	JSONEncoder    = "json"
)

// New returns a logger at the given level using the console or json encoder.
func New(level, encoder string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var cfg zap.Config
	switch encoder {
	case JSONEncoder:
		cfg = zap.NewProductionConfig()
	case ConsoleEncoder, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log encoder %q", encoder)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	return cfg.Build()
}

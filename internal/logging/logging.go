package logging

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap.Logger honoring the log-level and log-format
// configured via Viper. Output goes to stdout.
func NewLogger() (*zap.Logger, error) {
	cfg, err := newConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

func newConfig() (zap.Config, error) {
	cfg := zap.NewProductionConfig()
	// every per-file line must reach the output
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stdout"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	levelStr := viper.GetString("log-level")
	if levelStr != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(levelStr)); err != nil {
			return zap.Config{}, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	switch format := viper.GetString("log-format"); format {
	case "", "console":
	case "json":
		cfg.Encoding = "json"
		cfg.EncoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}
	return cfg, nil
}

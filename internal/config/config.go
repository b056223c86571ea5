// Package config holds the board's runtime configuration. Values come from
// defaults, an optional config file, SYNCBOARD_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"SyncBoard/internal/state"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "SYNCBOARD"

type Config struct {
	// Server side.
	Listen    string       `mapstructure:"listen"`
	QueueSize int          `mapstructure:"queue-size"`
	RateLimit float64      `mapstructure:"rate-limit"`
	RateBurst int          `mapstructure:"rate-burst"`
	Advertise bool         `mapstructure:"advertise"`
	Limits    state.Limits `mapstructure:"limits"`

	// Client side.
	Server       string        `mapstructure:"server"`
	MaxReconnect time.Duration `mapstructure:"max-reconnect"`
	Output       string        `mapstructure:"output"`

	LogLevel   string `mapstructure:"log-level"`
	LogEncoder string `mapstructure:"log-encoder"`
}

func Default() Config {
	return Config{
		Listen:       ":3000",
		QueueSize:    1024,
		RateLimit:    240,
		RateBurst:    480,
		Limits:       state.DefaultLimits(),
		MaxReconnect: 30 * time.Second,
		Output:       "board.pdf",
		LogLevel:     "info",
		LogEncoder:   "console",
	}
}

// NewViper returns a viper instance wired for SYNCBOARD_* environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if one is set, and decodes everything on top of
// the defaults.
func Load(v *viper.Viper, file string) (Config, error) {
	cfg := Default()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue-size must be positive, got %d", c.QueueSize))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate-limit must not be negative, got %g", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate-burst must be positive when rate-limit is set, got %d", c.RateBurst))
	}
	if c.Limits.MaxSize < 0 || c.Limits.MaxCoordinate < 0 {
		errs = append(errs, errors.New("codec limits must not be negative"))
	}
	return errors.Join(errs...)
}

// Package config loads alena settings from defaults, an optional YAML file
// and ALENA_ environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	Interval           time.Duration `mapstructure:"interval"`
	LogLevel           string        `mapstructure:"log_level"`
	Driver             string        `mapstructure:"driver"`
	DBPath             string        `mapstructure:"dbpath"`
	Redis              string        `mapstructure:"redis"`
	HTTP               string        `mapstructure:"http"`
	Workers            int           `mapstructure:"workers"`
	ReverseDelay       time.Duration `mapstructure:"reverse_delay"`
	TranspositionDelay time.Duration `mapstructure:"transposition_delay"`
}

var defaults = map[string]interface{}{
	"timeout":             3 * time.Second,
	"interval":            time.Second,
	"log_level":           "info",
	"driver":              "memstore",
	"dbpath":              "",
	"redis":               "tcp://127.0.0.1:6379",
	"http":                "",
	"workers":             1,
	"reverse_delay":       3 * time.Second,
	"transposition_delay": 7 * time.Second,
}

// Default returns the built-in settings.
func Default() *Config {
	c, _ := Load("")
	return c
}

// Load reads path when it is not empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("ALENA")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "memstore", "leveldb", "redis":
	default:
		return fmt.Errorf("unknown driver: %q", c.Driver)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	return nil
}

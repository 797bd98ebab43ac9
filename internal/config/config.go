// Package config loads coredb's YAML configuration with viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is coredb's top-level configuration.
type Config struct {
	Pool struct {
		Size int `mapstructure:"size"`
	} `mapstructure:"pool"`
	Log struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"log"`
	Server struct {
		Debug bool `mapstructure:"debug"`
	} `mapstructure:"server"`
}

// Default returns sane defaults for running without a config file.
func Default() *Config {
	var c Config
	c.Pool.Size = 128
	c.Log.Path = "coredb.wal"
	return &c
}

// Load reads a YAML config file at path into a Config, starting from
// Default() so a partial file only overrides what it sets.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

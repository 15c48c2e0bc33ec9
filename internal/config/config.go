// Package config loads godex's CLI configuration file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type dump struct {
	Output string `json:"output"`
	Color  bool   `json:"color"`
}

// Config is godex's CLI configuration. The dex core library carries no
// configuration of its own (spec.md: it is a pure, stateless accessor
// layer); everything here governs the companion CLI's output.
type Config struct {
	Dump dump `json:"dump"`
}

func (c *Config) verify() error {
	if c.Dump.Output == "" {
		c.Dump.Output = "-"
	}
	return nil
}

// LoadConfig loads the CLI configuration from whatever viper has already
// bound (flags, environment, and an optional config file set up by
// cmd/godex/cmd's initConfig).
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
)

// BridgeConfig controls the HTTP bridge started by "lifefork serve".
type BridgeConfig struct {
	Addr            string        `env:"LIFEFORK_BRIDGE_ADDR"             envDefault:"127.0.0.1:5001"`
	SettingsFile    string        `env:"LIFEFORK_SETTINGS"`
	AllowOrigin     string        `env:"LIFEFORK_BRIDGE_ALLOW_ORIGIN"     envDefault:"*"`
	RunTimeout      time.Duration `env:"LIFEFORK_BRIDGE_RUN_TIMEOUT"      envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"LIFEFORK_BRIDGE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadBridgeConfig reads the bridge configuration from the environment.
func LoadBridgeConfig() (BridgeConfig, error) {
	var cfg BridgeConfig
	if err := env.Parse(&cfg); err != nil {
		return BridgeConfig{}, oops.Code(CodeConfigInvalid).With("field", "env").Wrapf(err, "parse bridge environment")
	}
	return cfg, nil
}

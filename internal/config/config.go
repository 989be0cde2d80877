// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package config loads the configuration for the ipcprobe demonstration
// binary: YAML defaults overridden by environment variables. The p2p
// library itself takes no ambient configuration — it is configured purely
// through the JSON value described in the facade's New.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Ipc     IpcConfig     `yaml:"ipc"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

// IpcConfig mirrors the backend configuration the p2p facade parses as
// JSON: which socket transport to use and where to find the daemon.
type IpcConfig struct {
	SocketType string `yaml:"socketType" envconfig:"IPC_SOCKET_TYPE"`
	Uri        string `yaml:"uri"        envconfig:"IPC_URI"`
}

// Singleton config instance with default values.
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level: "info",
	},
	Metrics: MetricsConfig{
		ListenAddress: "",
		ListenPort:    8081,
	},
	Ipc: IpcConfig{
		SocketType: "local",
		Uri:        "ipc://holo-p2p.sock",
	},
}

// Load reads configFile (if non-empty) as YAML into the global config,
// then overlays any set environment variables.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %s", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %s", err)
		}
	}
	// We use "dummy" as the app name here to (mostly) prevent picking up
	// env vars that we hadn't explicitly specified in annotations above.
	if err := envconfig.Process("dummy", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %s", err)
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance.
func GetConfig() *Config {
	return globalConfig
}

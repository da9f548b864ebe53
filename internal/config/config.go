// Package config loads the console configuration from a YAML file, falling
// back to coded defaults when the file is absent.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Console ConsoleConfig `yaml:"console"`
	Server  ServerConfig  `yaml:"server"`
}

// BackendConfig locates the Debug Agent backend.
type BackendConfig struct {
	WSURL          string        `yaml:"ws_url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
}

// ConsoleConfig tunes the client.
type ConsoleConfig struct {
	StatusPollInterval time.Duration `yaml:"status_poll_interval"`
	ConsoleCap         int           `yaml:"console_cap"`
}

// ServerConfig is used by the simulator backend.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			WSURL:          "ws://127.0.0.1:5174/ws",
			ReconnectDelay: time.Second,
		},
		Console: ConsoleConfig{
			StatusPollInterval: 2 * time.Second,
			ConsoleCap:         1000,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5174,
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error; any other read or parse failure is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package config loads opsagent's configuration: where the remote management
// API lives, how to reach the planner, how to serve HTTP and how to log.
// Values are resolved once at startup and injected into the components that
// need them.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration document.
type Config struct {
	API     APIConfig     `yaml:"api" json:"api" toml:"api"`
	Planner PlannerConfig `yaml:"planner" json:"planner" toml:"planner"`
	Server  ServerConfig  `yaml:"server" json:"server" toml:"server"`
	Log     LogConfig     `yaml:"log" json:"log" toml:"log"`
	Secrets SecretsConfig `yaml:"secrets" json:"secrets" toml:"secrets"`
}

// APIConfig points at the remote management API every capability talks to.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:3001/api/v1.
	BaseURL string   `yaml:"baseURL" json:"baseURL" toml:"baseURL"`
	Token   string   `yaml:"token" json:"token" toml:"token"`
	Timeout Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// PlannerConfig configures the chat-completions endpoint that turns free
// text into a plan document.
type PlannerConfig struct {
	Endpoint    string   `yaml:"endpoint" json:"endpoint" toml:"endpoint"`
	APIKey      string   `yaml:"apiKey" json:"apiKey" toml:"apiKey"`
	Model       string   `yaml:"model" json:"model" toml:"model"`
	Temperature float64  `yaml:"temperature" json:"temperature" toml:"temperature"`
	MaxTokens   int      `yaml:"maxTokens" json:"maxTokens" toml:"maxTokens"`
	Timeout     Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
}

type ServerConfig struct {
	ListenAddress string   `yaml:"listenAddress" json:"listenAddress" toml:"listenAddress"`
	ReadTimeout   Duration `yaml:"readTimeout" json:"readTimeout" toml:"readTimeout"`
	WriteTimeout  Duration `yaml:"writeTimeout" json:"writeTimeout" toml:"writeTimeout"`
}

type LogConfig struct {
	Level      string `yaml:"level" json:"level" toml:"level"`
	File       string `yaml:"file" json:"file" toml:"file"`
	Color      *bool  `yaml:"color" json:"color" toml:"color"`
	MaxSizeMB  int    `yaml:"maxSizeMB" json:"maxSizeMB" toml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups" toml:"maxBackups"`
}

type SecretsConfig struct {
	// ValidateKubeconfig rejects kubeconfig secrets whose content does not parse.
	ValidateKubeconfig bool `yaml:"validateKubeconfig" json:"validateKubeconfig" toml:"validateKubeconfig"`
}

// Duration is a time.Duration written as a string ("30s", "2m") in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

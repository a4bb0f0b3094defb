package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mensylisir/opsagent/pkg/common"
)

// Format is the encoding of a configuration document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the decoder from the file extension. Unknown extensions are read as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Load reads the configuration file at configPath, overlays the environment,
// applies defaults and validates the result.
//
// An empty configPath falls back to ./opsagent.yaml when it exists and to a
// pure defaults-plus-environment configuration otherwise.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		if _, err := os.Stat(common.DefaultConfigFileName); err == nil {
			configPath = common.DefaultConfigFileName
		}
	}

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file '%s'", configPath)
		}
		cfg, err = decode(data, FormatFromPath(configPath))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file '%s'", configPath)
		}
	}
	return finish(cfg, os.LookupEnv)
}

// LoadFromBytes decodes data in the given format, then applies the
// environment, defaults and validation exactly like Load.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	cfg, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return finish(cfg, os.LookupEnv)
}

func finish(cfg *Config, lookup LookupFunc) (*Config, error) {
	ApplyEnv(cfg, lookup)
	SetDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func decode(data []byte, format Format) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	case FormatTOML:
		err = toml.Unmarshal(data, cfg)
	case FormatJSON:
		err = json.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s config", format)
	}
	return cfg, nil
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables on cfg. OPSAGENT_* variables win
// over the legacy OPSIMATE_URL, OPSIMATE_TOKEN and GROQ_API_KEY names.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	if cfg == nil {
		return
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	first := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	if v, ok := first(common.EnvAPIURL, common.EnvLegacyAPIURL); ok {
		cfg.API.BaseURL = v
	}
	if v, ok := first(common.EnvAPIToken, common.EnvLegacyAPIToken); ok {
		cfg.API.Token = v
	}
	if v, ok := first(common.EnvPlannerAPIKey, common.EnvLegacyPlannerKey); ok {
		cfg.Planner.APIKey = v
	}
	if v, ok := first(common.EnvPlannerModel); ok {
		cfg.Planner.Model = v
	}
	if v, ok := first(common.EnvListenAddress); ok {
		cfg.Server.ListenAddress = v
	}
}

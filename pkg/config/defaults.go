package config

import (
	"strings"

	"github.com/mensylisir/opsagent/pkg/common"
)

// SetDefaults fills every unset field. It modifies cfg in place.
func SetDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = common.DefaultAPIBaseURL
	}
	cfg.API.BaseURL = NormalizeBaseURL(cfg.API.BaseURL)
	if cfg.API.Timeout.Duration == 0 {
		cfg.API.Timeout.Duration = common.DefaultAPITimeout
	}

	if cfg.Planner.Endpoint == "" {
		cfg.Planner.Endpoint = common.DefaultPlannerEndpoint
	}
	if cfg.Planner.Model == "" {
		cfg.Planner.Model = common.DefaultPlannerModel
	}
	if cfg.Planner.MaxTokens == 0 {
		cfg.Planner.MaxTokens = common.DefaultPlannerMaxTokens
	}
	if cfg.Planner.Timeout.Duration == 0 {
		cfg.Planner.Timeout.Duration = common.DefaultPlannerTimeout
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = common.DefaultListenAddress
	}
	if cfg.Server.ReadTimeout.Duration == 0 {
		cfg.Server.ReadTimeout.Duration = common.DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout.Duration == 0 {
		cfg.Server.WriteTimeout.Duration = common.DefaultWriteTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = common.DefaultLogLevel
	}
	if cfg.Log.Color == nil {
		color := true
		cfg.Log.Color = &color
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = common.DefaultLogMaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = common.DefaultLogMaxBackups
	}
}

// NormalizeBaseURL trims trailing slashes and a trailing "/users" segment, so
// a base URL copied from the users endpoint still addresses the API root.
func NormalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	u = strings.TrimSuffix(u, common.LegacyUsersSuffix)
	return strings.TrimRight(u, "/")
}

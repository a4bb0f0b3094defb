package config

import (
	"fmt"
	"strings"

	"github.com/mensylisir/opsagent/pkg/errors/validation"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/util"
)

// Validate checks a defaulted configuration and reports every problem at once.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	errs := validation.New("configuration")

	if !util.IsValidHTTPURL(cfg.API.BaseURL) {
		errs.AddError("api.baseURL", fmt.Sprintf("%q must be an absolute http(s) URL", cfg.API.BaseURL))
	}
	if cfg.API.Timeout.Duration < 0 {
		errs.AddError("api.timeout", "must not be negative")
	}

	if !util.IsValidHTTPURL(cfg.Planner.Endpoint) {
		errs.AddError("planner.endpoint", fmt.Sprintf("%q must be an absolute http(s) URL", cfg.Planner.Endpoint))
	}
	if cfg.Planner.Temperature < 0 || cfg.Planner.Temperature > 2 {
		errs.AddError("planner.temperature", fmt.Sprintf("%v must be within [0, 2]", cfg.Planner.Temperature))
	}
	if cfg.Planner.MaxTokens < 0 {
		errs.AddError("planner.maxTokens", "must not be negative")
	}
	if cfg.Planner.Timeout.Duration < 0 {
		errs.AddError("planner.timeout", "must not be negative")
	}

	if strings.TrimSpace(cfg.Server.ListenAddress) == "" {
		errs.AddError("server.listenAddress", "cannot be empty")
	}
	if cfg.Server.ReadTimeout.Duration < 0 || cfg.Server.WriteTimeout.Duration < 0 {
		errs.Add("server timeouts must not be negative")
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs.Add("log.level: %v", err)
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 {
		errs.Add("log rotation limits must not be negative")
	}

	return errs.Err()
}

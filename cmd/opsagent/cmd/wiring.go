package cmd

import (
	"github.com/mensylisir/opsagent/pkg/capability"
	"github.com/mensylisir/opsagent/pkg/config"
	"github.com/mensylisir/opsagent/pkg/engine"
	"github.com/mensylisir/opsagent/pkg/executor"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/opsimate"
	"github.com/mensylisir/opsagent/pkg/planner"
)

func newRegistry(cfg *config.Config, log *logger.Logger) *capability.Registry {
	client := opsimate.NewClient(opsimate.ClientOptions{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout.Duration,
		Logger:  log,
	})
	return capability.NewBuiltinRegistry(client, capability.Options{
		ValidateKubeconfig: cfg.Secrets.ValidateKubeconfig,
		Logger:             log,
	})
}

func newEngine(reg *capability.Registry, obs engine.Observer, log *logger.Logger) (engine.Engine, error) {
	ex, err := executor.NewExecutor(executor.ExecutorOptions{Logger: log, Registry: reg})
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Options{Logger: log, Executor: ex, Observer: obs})
}

func newPlanner(cfg *config.Config, reg *capability.Registry, log *logger.Logger) (*planner.Client, error) {
	return planner.New(planner.Options{
		Endpoint:     cfg.Planner.Endpoint,
		APIKey:       cfg.Planner.APIKey,
		Model:        cfg.Planner.Model,
		Temperature:  cfg.Planner.Temperature,
		MaxTokens:    cfg.Planner.MaxTokens,
		Timeout:      cfg.Planner.Timeout.Duration,
		Logger:       log,
		Capabilities: reg.Descriptors(),
	})
}

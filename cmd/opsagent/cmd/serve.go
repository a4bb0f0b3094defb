package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mensylisir/opsagent/pkg/common"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/planner"
	"github.com/mensylisir/opsagent/pkg/util"
	"github.com/mensylisir/opsagent/rest/app"
	"github.com/mensylisir/opsagent/rest/server"
)

var serveListen string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (overrides server.listenAddress)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and the web form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get()
		reg := newRegistry(appConfig, log)
		eng, err := newEngine(reg, nil, log)
		if err != nil {
			return err
		}

		opts := app.PlanServiceOptions{Engine: eng, Registry: reg, Logger: log}
		if p, err := newPlanner(appConfig, reg, log); err != nil {
			log.Warnf("Planner disabled, /api/v1/ask will answer 503: %v", err)
		} else {
			opts.Planner = planner.Planner(p)
		}
		svc, err := app.NewPlanService(opts)
		if err != nil {
			return err
		}

		cfg := &server.Config{
			ListenAddress:   appConfig.Server.ListenAddress,
			ReadTimeout:     appConfig.Server.ReadTimeout.Duration,
			WriteTimeout:    appConfig.Server.WriteTimeout.Duration,
			ShutdownTimeout: common.DefaultShutdownTimeout,
		}
		if serveListen != "" {
			cfg.ListenAddress = serveListen
		}

		fmt.Fprintln(cmd.ErrOrStderr(), util.GenerateASCIIArt(common.AppName, "small"))
		log.Infof("Using Opsimate API at %s", appConfig.API.BaseURL)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.NewAPIServer(cfg, svc, log).Start(ctx)
	},
}

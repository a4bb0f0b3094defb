package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mensylisir/opsagent/pkg/engine"
	"github.com/mensylisir/opsagent/pkg/logger"
)

type AskOptions struct {
	OutputFormat string
	DryRun       bool
	Progress     bool
}

var askOptions = &AskOptions{}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askOptions.OutputFormat, "output", "o", outputTable, "Output format. One of: table|json|yaml")
	askCmd.Flags().BoolVar(&askOptions.DryRun, "dry-run", false, "Print the generated plan without executing it")
	askCmd.Flags().BoolVar(&askOptions.Progress, "progress", false, "Show a progress bar on stderr while steps run")
}

var askCmd = &cobra.Command{
	Use:   "ask REQUEST...",
	Short: "Plan a plain-text request with the language model and execute it",
	Example: `  opsagent ask "create a kubeconfig secret named prod from /home/me/.kube/config and a k8s cluster prod-1 that uses it"
  opsagent ask --dry-run "list all users"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(askOptions.OutputFormat); err != nil {
			return err
		}
		log := logger.Get()
		reg := newRegistry(appConfig, log)
		p, err := newPlanner(appConfig, reg, log)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		raw, err := p.Plan(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if askOptions.DryRun {
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		}
		log.Debugf("Generated plan: %s", raw)

		var obs engine.Observer
		if askOptions.Progress {
			obs = &progressObserver{}
		}
		eng, err := newEngine(reg, obs, log)
		if err != nil {
			return err
		}
		report := eng.Run(ctx, []byte(raw))
		if err := writeReport(cmd.OutOrStdout(), report, askOptions.OutputFormat); err != nil {
			return err
		}
		return reportError(report)
	},
}

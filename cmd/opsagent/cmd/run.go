package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mensylisir/opsagent/pkg/engine"
	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/plan"
)

type RunOptions struct {
	PlanFile     string
	OutputFormat string
	Progress     bool
}

var runOptions = &RunOptions{}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOptions.PlanFile, "file", "f", "", "Plan document to execute ('-' reads stdin)")
	runCmd.Flags().StringVarP(&runOptions.OutputFormat, "output", "o", outputTable, "Output format. One of: table|json|yaml")
	runCmd.Flags().BoolVar(&runOptions.Progress, "progress", false, "Show a progress bar on stderr while steps run")
	_ = runCmd.MarkFlagRequired("file")
}

var runCmd = &cobra.Command{
	Use:   "run -f PLAN",
	Short: "Execute a plan document",
	Long: `Executes every step of a plan document in order and prints the report.
A plan has the form {"steps":[{"function":"<name>","arguments":{...}}]}.
Arguments may reference values exported by earlier steps, e.g. "{{last_secret_id}}".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(runOptions.OutputFormat); err != nil {
			return err
		}
		raw, err := readPlan(cmd.InOrStdin(), runOptions.PlanFile)
		if err != nil {
			return err
		}

		log := logger.Get()
		var obs engine.Observer
		if runOptions.Progress {
			obs = &progressObserver{}
		}
		eng, err := newEngine(newRegistry(appConfig, log), obs, log)
		if err != nil {
			return err
		}

		report := eng.Run(context.Background(), raw)
		if err := writeReport(cmd.OutOrStdout(), report, runOptions.OutputFormat); err != nil {
			return err
		}
		return reportError(report)
	},
}

func readPlan(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file '%s': %w", path, err)
	}
	return data, nil
}

// reportError makes the command exit non-zero when any step failed.
func reportError(report *plan.Report) error {
	if report.Status == plan.StatusSuccess {
		return nil
	}
	return fmt.Errorf("plan finished with status %s (%d of %d steps failed)", report.Status, report.FailedCount(), len(report.Steps))
}

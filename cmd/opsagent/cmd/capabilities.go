package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mensylisir/opsagent/pkg/logger"
)

var capabilitiesOutput string

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
	capabilitiesCmd.Flags().StringVarP(&capabilitiesOutput, "output", "o", outputTable, "Output format. One of: table|json|yaml")
}

var capabilitiesCmd = &cobra.Command{
	Use:     "capabilities",
	Aliases: []string{"caps"},
	Short:   "List the functions a plan step may call",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(capabilitiesOutput); err != nil {
			return err
		}
		descs := newRegistry(appConfig, logger.Get()).Descriptors()
		switch capabilitiesOutput {
		case outputJSON:
			return writeJSON(cmd.OutOrStdout(), descs)
		case outputYAML:
			return writeYAML(cmd.OutOrStdout(), descs)
		}
		writeCapabilitiesTable(cmd.OutOrStdout(), descs)
		return nil
	},
}

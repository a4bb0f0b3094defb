package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mensylisir/opsagent/pkg/config"
	"github.com/mensylisir/opsagent/pkg/logger"
)

var (
	// Global flags
	cfgFile     string
	verboseFlag bool
	logFile     string
	noColorFlag bool

	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opsagent",
	Short: "opsagent turns operational requests into executed plans.",
	Long: `opsagent executes plans of administrative actions (users, secrets and
clusters) against an Opsimate management API. Plans are JSON documents,
written by hand or produced by a language model from a plain-text request.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		logger.Init(loggerOptions(cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.SyncGlobal()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file (yaml, toml or json; default ./opsagent.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (overrides log.file)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
}

func loggerOptions(cfg *config.Config) logger.Options {
	opts := logger.DefaultOptions()
	if lvl, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		opts.ConsoleLevel = lvl
	}
	if verboseFlag {
		opts.ConsoleLevel = logger.DebugLevel
	}
	opts.ColorConsole = cfg.Log.Color == nil || *cfg.Log.Color
	if noColorFlag {
		opts.ColorConsole = false
		color.NoColor = true
	}
	path := cfg.Log.File
	if logFile != "" {
		path = logFile
	}
	if path != "" {
		opts.FileOutput = true
		opts.LogFilePath = path
	}
	opts.MaxSizeMB = cfg.Log.MaxSizeMB
	opts.MaxBackups = cfg.Log.MaxBackups
	return opts
}

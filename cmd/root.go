package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/provision"
	"setup-dotfiles/internal/report"
)

// debug indicates whether debug logging should be enabled, toggled via `--debug`.
var debug bool

// configPath is the provisioning config; empty selects the embedded default.
var configPath string

// reportPath, when set, receives the run report as JSON.
var reportPath string

// rootCmd provisions the machine when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "setup-dotfiles",
	Short: "Idempotent workstation provisioning for macOS, Ubuntu and Arch",
	Long: `setup-dotfiles brings a machine to the configured state: package manager,
packages, zsh as the login shell, dotfile symlinks, window-manager services,
wallpaper and fonts. Every step checks whether its result is already in place,
so running it again only does what is missing.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,

	// Runs before any subcommand.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := platform.NewDetector().Detect()
		if err != nil {
			return err
		}
		logger.Info("[INFO] Detected platform: %s\n", p)

		env, err := provision.NewEnv(p)
		if err != nil {
			return err
		}
		cfg, err := config.Load(configPath, env.Home)
		if err != nil {
			return err
		}

		rep, runErr := executor.Run(cmd.Context(), provision.Steps(cfg, env), p)

		if err := report.Print(cmd.OutOrStdout(), rep); err != nil {
			logger.Warn("[WARN] Failed to print report: %v\n", err)
		}
		if reportPath != "" {
			if err := report.Save(reportPath, rep); err != nil {
				logger.Error("[ERROR] %v\n", err)
			}
		}
		return runErr
	},
}

// Execute registers flags and subcommands and runs the CLI.
func Execute() error {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or TOML config (default: built-in)")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write the run report as JSON to this path")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(planCmd)

	if err := rootCmd.Execute(); err != nil {
		if !alreadyReported(err) {
			logger.Error("[ERROR] %v\n", err)
		}
		return err
	}
	return nil
}

// alreadyReported reports whether err was logged where it happened. The executor
// logs a critical step failure when it aborts the run.
func alreadyReported(err error) bool {
	var critical *executor.CriticalStepError
	return errors.As(err, &critical)
}

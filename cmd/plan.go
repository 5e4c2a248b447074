package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/executor"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/provision"
)

// planPlatform overrides detection for `plan`.
var planPlatform string

// planCmd lists the steps a run would consider and whether each is already
// satisfied. Only probes run; nothing is changed.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which steps would run, without changing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			p   platform.Platform
			err error
		)
		if planPlatform != "" {
			p, err = platform.Parse(planPlatform)
		} else {
			p, err = platform.NewDetector().Detect()
		}
		if err != nil {
			return err
		}

		env, err := provision.NewEnv(p)
		if err != nil {
			return err
		}
		cfg, err := config.Load(configPath, env.Home)
		if err != nil {
			return err
		}
		return writePlan(cmd.Context(), cmd.OutOrStdout(), provision.Steps(cfg, env), p)
	},
}

// writePlan probes every step eligible on p and prints one line per step.
func writePlan(ctx context.Context, w io.Writer, steps []executor.Step, p platform.Platform) error {
	if err := executor.ValidateOrder(steps); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "STEP\tSTATE\tAFTER\n")
	for _, step := range steps {
		if !step.AppliesTo(p) {
			continue
		}
		state := "pending"
		if step.Satisfied(ctx) {
			state = "satisfied"
		}
		if step.Critical {
			state += " (critical)"
		}
		after := strings.Join(step.After, ",")
		if after == "" {
			after = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", step.Name, state, after)
	}
	return tw.Flush()
}

func init() {
	planCmd.Flags().StringVar(&planPlatform, "platform", "", "Plan for this platform instead of the detected one (macos, ubuntu, arch)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"setup-dotfiles/internal/platform"
)

// detectCmd prints the platform the full run would provision.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the detected platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := platform.NewDetector().Detect()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), p)
		return err
	},
}

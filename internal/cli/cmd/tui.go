package cmd

import (
	"github.com/spf13/cobra"
)

func newTuiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui <BV id | av id | URL>...",
		Short: "Download with the interactive terminal UI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := getFlagsFrom(cmd)
			f.TUI = true
			return runGet(cmd, a, args, f)
		},
	}
	bindGetFlags(cmd.Flags())
	// The remaining get flags make no sense with a forced UI.
	for _, name := range []string{"no-ui", "dry-run"} {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			fl.Hidden = true
		}
	}
	return cmd
}

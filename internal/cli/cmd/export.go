package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cilicili/internal/export"
)

func newExportCmd(_ *app) *cobra.Command {
	var dir, name string
	cmd := &cobra.Command{
		Use:   "export <file>... --to DIR",
		Short: "Copy downloaded files into another folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if name != "" {
				if len(args) != 1 {
					return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("--name needs exactly one file")}
				}
				dst, err := export.File(args[0], dir, name)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, dst)
				return nil
			}
			done, err := export.Batch(args, dir)
			for _, p := range done {
				if fi, ierr := export.Info(p); ierr == nil {
					fmt.Fprintln(out, fi)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "to", "", "Destination folder")
	cmd.Flags().StringVar(&name, "name", "", "New file name (single file only)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/spf13/cobra"

	"cilicili/internal/util"
	"cilicili/internal/util/deps"
	"cilicili/internal/util/format"
)

// lowDiskBytes is the free-space level below which doctor warns.
const lowDiskBytes = 2 << 30

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg, ffprobe and the output folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			ff, ferr := deps.FindFFmpeg(a.opts.FFmpeg)
			if ferr != nil {
				fmt.Fprintf(out, "FFmpeg:     not found (downloads will not be merged)\n")
			} else {
				fmt.Fprintf(out, "FFmpeg:     %s\n", ff)
			}
			if probe, err := deps.FindFFprobe(ff); err != nil {
				fmt.Fprintf(out, "FFprobe:    not found\n")
			} else {
				fmt.Fprintf(out, "FFprobe:    %s\n", probe)
			}

			dir := filepath.Clean(a.opts.OutDir)
			fmt.Fprintf(out, "Output dir: %s\n", dir)
			if err := util.EnsureDir(dir); err != nil {
				return err
			}
			if u, err := disk.Usage(dir); err == nil {
				fmt.Fprintf(out, "Free space: %s of %s (%.0f%% used)\n",
					format.HumanizeBytes(int64(u.Free)), format.HumanizeBytes(int64(u.Total)), u.UsedPercent)
				if u.Free < lowDiskBytes {
					fmt.Fprintln(out, "warning: less than 2 GiB free in the output folder")
				}
			}

			if s, err := a.store(); err == nil {
				if d, err := s.Load(); err == nil {
					fmt.Fprintf(out, "Login:      stored (%s)\n", s.Path())
					if d.Profile != nil {
						fmt.Fprintf(out, "Account:    %s\n", d.Profile.Name)
					}
				} else {
					fmt.Fprintln(out, "Login:      none, high qualities need 'cilicili login'")
				}
			}

			if ferr != nil {
				return ferr
			}
			return nil
		},
	}
}

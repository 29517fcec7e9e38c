package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cilicili/internal/model"
	"cilicili/internal/progress"
)

// newDownloadCmd runs the pipeline on stream URLs obtained elsewhere.
func newDownloadCmd(a *app) *cobra.Command {
	var req model.DownloadRequest
	var useSession bool
	cmd := &cobra.Command{
		Use:   "download --title T --bvid BV --video-url URL [--audio-url URL]",
		Short: "Download and merge explicit stream URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if useSession && req.Cookies == "" {
				req.Cookies = a.cookies()
			}
			var rep progress.Reporter = progress.NewSlogReporter(nil)
			if isStderrTerminal() {
				rep = progress.NewBarReporter(os.Stderr)
			}
			out, err := newService(a.opts, uuid.NewString(), rep).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message())
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&req.Title, "title", "", "Title used to name the output files")
	fs.StringVar(&req.VideoID, "bvid", "", "BV id, used for the Referer header")
	fs.StringVar(&req.Video.URL, "video-url", "", "Video stream URL")
	fs.StringVar(&req.Audio.URL, "audio-url", "", "Audio stream URL")
	fs.StringVar(&req.Cookies, "cookies", "", "Cookie header to send (default: the stored login)")
	fs.BoolVar(&useSession, "session", true, "Send the stored login cookies when --cookies is empty")
	fs.Float64Var(&req.Duration, "duration", 0, "Duration in seconds, for merge progress")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("video-url")
	return cmd
}

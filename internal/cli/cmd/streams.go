package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cilicili/internal/model"
	"cilicili/internal/pipeline"
	"cilicili/internal/util/format"
)

func newStreamsCmd(a *app) *cobra.Command {
	var page int
	var check bool
	cmd := &cobra.Command{
		Use:   "streams <BV id | av id | URL>",
		Short: "List the DASH streams offered for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cookies := a.cookies()
			client := a.client()
			res := pipeline.Resolver{Client: client, Cookies: cookies}
			r, err := res.Streams(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  (%d page(s), up: %s)\n\n", r.Video.BVID, r.Video.TitleFor(r.Page), len(r.Video.Pages), r.Video.Owner.Name)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tID\tDESCRIPTION\tCODEC\tEST. SIZE\tSTATUS")
			list := func(kind string, streams []model.StreamDescriptor) {
				for _, s := range streams {
					status := "-"
					if check {
						code, err := client.TestStreamURL(cmd.Context(), s.URL, cookies)
						status = fmt.Sprint(code)
						if err != nil && code == 0 {
							status = "error"
						}
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", kind, s.Quality, s.Description, s.Format, format.HumanizeBytes(s.Size), status)
				}
			}
			list("video", r.Videos)
			list("audio", r.Audios)
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page (part) of a multi-part video")
	cmd.Flags().BoolVar(&check, "check", false, "Probe every stream URL with a HEAD request")
	return cmd
}

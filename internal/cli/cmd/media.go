package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cilicili/internal/muxer"
	"cilicili/internal/progress"
	"cilicili/internal/util/format"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Show container and stream information with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := muxer.NewFFmpeg(a.opts.FFmpeg, a.opts.Verbose).Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Format:\t%s\n", info.Format.FormatName)
			fmt.Fprintf(tw, "Duration:\t%.1fs\n", info.DurationSec())
			fmt.Fprintf(tw, "Size:\t%s\n", format.HumanizeBytes(info.SizeBytes()))
			for _, s := range info.Streams {
				dims := ""
				if s.Width > 0 {
					dims = fmt.Sprintf(" %dx%d", s.Width, s.Height)
				}
				fmt.Fprintf(tw, "Stream #%d:\t%s %s%s\n", s.Index, s.CodecType, s.CodecName, dims)
			}
			return tw.Flush()
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Re-encode a file to mp4, avi or mkv",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := muxer.NewFFmpeg(a.opts.FFmpeg, a.opts.Verbose)
			opts := transcodeProgress(cmd, tool, args[0])
			out, err := muxer.Convert(cmd.Context(), tool, args[0], args[1], to, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&to, "format", "f", muxer.FormatMP4, "Target format: mp4, avi, mkv")
	return cmd
}

func newExtractAudioCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "extract-audio <input> <output>",
		Short: "Extract the audio track to mp3, aac or wav",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := muxer.NewFFmpeg(a.opts.FFmpeg, a.opts.Verbose)
			opts := transcodeProgress(cmd, tool, args[0])
			out, err := muxer.ExtractAudio(cmd.Context(), tool, args[0], args[1], to, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&to, "format", "f", muxer.AudioMP3, "Target format: mp3, aac, wav")
	return cmd
}

// transcodeProgress draws a bar on a terminal when the input duration is known.
func transcodeProgress(cmd *cobra.Command, tool *muxer.FFmpeg, input string) []muxer.Option {
	if !isStderrTerminal() {
		return nil
	}
	info, err := tool.Probe(cmd.Context(), input)
	if err != nil || info.DurationSec() <= 0 {
		return nil
	}
	rep := progress.NewBarReporter(os.Stderr)
	return []muxer.Option{muxer.WithProgress(uuid.NewString(), info.DurationSec(), rep.Update)}
}

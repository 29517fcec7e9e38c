package muxer

import (
	"context"
	"encoding/json"
	"strconv"

	"cilicili/internal/model"
	"cilicili/internal/util"
	"cilicili/internal/util/deps"
)

// ProbeInfo is the subset of ffprobe's JSON report that we use.
type ProbeInfo struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type ProbeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ProbeStream struct {
	Index      int    `json:"index"`
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	BitRate    string `json:"bit_rate,omitempty"`
}

// DurationSec returns the container duration in seconds, 0 if unknown.
func (p ProbeInfo) DurationSec() float64 {
	d, _ := strconv.ParseFloat(p.Format.Duration, 64)
	return d
}

// SizeBytes returns the container size, 0 if unknown.
func (p ProbeInfo) SizeBytes() int64 {
	n, _ := strconv.ParseInt(p.Format.Size, 10, 64)
	return n
}

// HasVideo reports whether any video stream is present.
func (p ProbeInfo) HasVideo() bool { return p.hasType("video") }

// HasAudio reports whether any audio stream is present.
func (p ProbeInfo) HasAudio() bool { return p.hasType("audio") }

func (p ProbeInfo) hasType(t string) bool {
	for _, s := range p.Streams {
		if s.CodecType == t {
			return true
		}
	}
	return false
}

// ProbeArgs returns the ffprobe arguments for a JSON report of path.
func ProbeArgs(path string) []string {
	return []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path}
}

// ParseProbe decodes ffprobe's JSON output.
func ParseProbe(data []byte) (ProbeInfo, error) {
	var info ProbeInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ProbeInfo{}, err
	}
	return info, nil
}

// Probe runs ffprobe on path. ffprobe is looked for next to ffmpeg first.
func (f *FFmpeg) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	if err := checkInput(path); err != nil {
		return ProbeInfo{}, err
	}
	ffmpegPath, _ := f.Locate()
	ffprobe, err := deps.FindFFprobe(ffmpegPath)
	if err != nil {
		return ProbeInfo{}, err
	}
	res, err := f.runner().Run(ctx, util.CmdSpec{
		Path:          ffprobe,
		Args:          ProbeArgs(path),
		CaptureStdout: true,
	})
	if err != nil {
		e := model.NewError(model.ErrToolExecution, "probe", path, err)
		e.Detail = tail(string(res.Stderr), maxStderr)
		return ProbeInfo{}, e
	}
	info, err := ParseProbe(res.Stdout)
	if err != nil {
		return ProbeInfo{}, model.NewError(model.ErrToolExecution, "parse probe output", path, err)
	}
	return info, nil
}

package muxer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Container formats accepted by Convert.
const (
	FormatMP4 = "mp4"
	FormatAVI = "avi"
	FormatMKV = "mkv"
)

// Audio formats accepted by ExtractAudio.
const (
	AudioMP3 = "mp3"
	AudioAAC = "aac"
	AudioWAV = "wav"
)

// mergeAudioBitrate is used when the audio track has to be re-encoded.
const mergeAudioBitrate = "128k"

// BuildMuxArgs returns ffmpeg arguments that put the video and audio tracks
// of two inputs into one MP4. Segment audio (.m4s, .mp3) is re-encoded to
// AAC; anything else is stream-copied.
func BuildMuxArgs(videoPath, audioPath, outputPath string, includeProgress bool) []string {
	args := []string{
		"-nostdin",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
	}
	if needsAudioReencode(audioPath) {
		args = append(args,
			"-c:a", "aac",
			"-b:a", mergeAudioBitrate,
			"-movflags", "+faststart",
			"-avoid_negative_ts", "make_zero",
		)
	} else {
		args = append(args,
			"-c:a", "copy",
			"-movflags", "+faststart",
		)
	}
	return finish(args, outputPath, includeProgress)
}

// BuildConvertArgs returns ffmpeg arguments that transcode inputPath into
// the given container format.
func BuildConvertArgs(inputPath, outputPath, format string, includeProgress bool) ([]string, error) {
	args := []string{"-nostdin", "-i", inputPath}
	switch strings.ToLower(format) {
	case FormatMP4:
		args = append(args,
			"-c:v", "libx264",
			"-c:a", "aac",
			"-crf", "23",
			"-preset", "medium",
		)
	case FormatAVI:
		args = append(args,
			"-c:v", "libx264",
			"-c:a", "mp3",
		)
	case FormatMKV:
		args = append(args, "-c", "copy")
	default:
		return nil, fmt.Errorf("unsupported video format %q (want mp4, avi or mkv)", format)
	}
	return finish(args, outputPath, includeProgress), nil
}

// BuildExtractAudioArgs returns ffmpeg arguments that drop the video track
// and encode the audio track in the given format.
func BuildExtractAudioArgs(inputPath, outputPath, format string, includeProgress bool) ([]string, error) {
	args := []string{"-nostdin", "-i", inputPath, "-vn"}
	switch strings.ToLower(format) {
	case AudioMP3:
		args = append(args, "-acodec", "mp3", "-ab", "192k")
	case AudioAAC:
		args = append(args, "-acodec", "aac", "-ab", "192k")
	case AudioWAV:
		args = append(args, "-acodec", "pcm_s16le")
	default:
		return nil, fmt.Errorf("unsupported audio format %q (want mp3, aac or wav)", format)
	}
	return finish(args, outputPath, includeProgress), nil
}

func needsAudioReencode(audioPath string) bool {
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".m4s", ".mp3":
		return true
	}
	return false
}

func finish(args []string, outputPath string, includeProgress bool) []string {
	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	return append(args, "-y", outputPath)
}

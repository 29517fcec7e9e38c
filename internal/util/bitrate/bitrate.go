// Package bitrate converts DASH bandwidth figures into sizes and labels.
package bitrate

import "strconv"

// EstimateBytes returns the expected payload size of a stream that averages
// bandwidthBps bits per second over durationSec seconds. Zero when either is unknown.
func EstimateBytes(bandwidthBps int64, durationSec float64) int64 {
	if bandwidthBps <= 0 || durationSec <= 0 {
		return 0
	}
	return int64(float64(bandwidthBps) * durationSec / 8)
}

// Kbps renders a bandwidth in bits per second as "<n>k", rounded to the nearest kbps.
func Kbps(bandwidthBps int64) string {
	if bandwidthBps <= 0 {
		return "0k"
	}
	return strconv.FormatInt((bandwidthBps+500)/1000, 10) + "k"
}

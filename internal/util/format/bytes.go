// Package format renders sizes and rates for logs and the terminal UI.
package format

import (
	"time"

	"github.com/dustin/go-humanize"
)

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MiB").
func HumanizeBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// Rate renders a transfer rate for n bytes moved in d, e.g. "2.4 MiB/s".
func Rate(n int64, d time.Duration) string {
	if d <= 0 || n <= 0 {
		return "0 B/s"
	}
	perSec := float64(n) / d.Seconds()
	return humanize.IBytes(uint64(perSec)) + "/s"
}

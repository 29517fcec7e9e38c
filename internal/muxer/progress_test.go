package muxer

import (
	"testing"

	"cilicili/internal/progress"
)

func TestProgressState_UpdateFromLine(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string
		durationSec float64
		stage       progress.Stage
		wantOk      bool
		wantPercent float64
		wantSpeed   string
		wantMessage string
	}{
		{
			name: "merge half way",
			lines: []string{
				"out_time_us=30000000",
				"speed=12.5x",
				"total_size=10485760",
				"progress=continue",
			},
			durationSec: 60,
			stage:       progress.StageMerging,
			wantOk:      true,
			wantPercent: 50,
			wantSpeed:   "12.5x",
			wantMessage: "Merging",
		},
		{
			name: "legacy out_time_ms key",
			lines: []string{
				"out_time_ms=15000000",
				"progress=continue",
			},
			durationSec: 60,
			stage:       progress.StageMerging,
			wantOk:      true,
			wantPercent: 25,
			wantMessage: "Merging",
		},
		{
			name:        "unknown duration",
			lines:       []string{"out_time_us=1000000", "speed=N/A", "progress=continue"},
			stage:       progress.StageConverting,
			wantOk:      true,
			wantPercent: -1,
			wantMessage: "Converting",
		},
		{
			name:        "end forces completion",
			lines:       []string{"out_time_us=59000000", "progress=end"},
			durationSec: 60,
			stage:       progress.StageMerging,
			wantOk:      true,
			wantPercent: 100,
			wantMessage: "Merging",
		},
		{
			name:        "overshoot is clamped",
			lines:       []string{"out_time_us=90000000", "progress=continue"},
			durationSec: 60,
			stage:       progress.StageMerging,
			wantOk:      true,
			wantPercent: 100,
			wantMessage: "Merging",
		},
		{
			name:  "no progress marker",
			lines: []string{"out_time_us=1000", "frame=10"},
			stage: progress.StageMerging,
		},
		{
			name:  "garbage",
			lines: []string{"not a key value line"},
			stage: progress.StageMerging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ps ProgressState
			var u progress.Update
			var ok bool
			for _, line := range tt.lines {
				u, ok = ps.UpdateFromLine(line, "job1", tt.stage, tt.durationSec)
			}
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if u.Percent != tt.wantPercent {
				t.Errorf("Percent = %v, want %v", u.Percent, tt.wantPercent)
			}
			if u.Stage != tt.stage || u.JobID != "job1" {
				t.Errorf("stage/job = %s/%s", u.Stage, u.JobID)
			}
			if u.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", u.Message, tt.wantMessage)
			}
			if tt.wantSpeed == "" {
				if u.Speed != nil {
					t.Errorf("Speed = %q, want nil", *u.Speed)
				}
			} else if u.Speed == nil || *u.Speed != tt.wantSpeed {
				t.Errorf("Speed = %v, want %q", u.Speed, tt.wantSpeed)
			}
		})
	}
}

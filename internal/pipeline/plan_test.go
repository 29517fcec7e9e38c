package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilicili/internal/model"
)

func TestPlanRequest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dl")

	tests := []struct {
		name     string
		req      model.DownloadRequest
		wantKind model.OutcomeKind
		wantOut  string
		wantSize int64
	}{
		{
			name:     "video and audio",
			req:      model.DownloadRequest{Title: "a/b", Video: model.StreamDescriptor{URL: "v", Size: 100}, Audio: model.StreamDescriptor{URL: "a", Size: 20}},
			wantKind: model.OutcomeMuxed,
			wantOut:  filepath.Join(out, "a_b.mp4"),
			wantSize: 120,
		},
		{
			name:     "video only",
			req:      model.DownloadRequest{Title: "clip", Video: model.StreamDescriptor{URL: "v", Size: 100}},
			wantKind: model.OutcomeVideoOnly,
			wantOut:  filepath.Join(out, "clip.mp4"),
			wantSize: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PlanRequest(tt.req, out)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Expected)
			assert.Equal(t, tt.wantOut, p.OutputPath)
			assert.Equal(t, tt.wantSize, p.EstBytes)
		})
	}
	assert.NoDirExists(t, out, "planning must not create directories")
}

func TestPlanRequest_NoVideo(t *testing.T) {
	_, err := PlanRequest(model.DownloadRequest{Title: "clip", Audio: model.StreamDescriptor{URL: "a"}}, t.TempDir())
	assert.True(t, errors.Is(err, model.ErrMissingInput))
}

func TestServicePlanUsesOutDir(t *testing.T) {
	out := t.TempDir()
	svc := NewService(WithOutDir(out), WithFetcher(newFetcher()), WithTool(&fakeTool{}))
	p, err := svc.Plan(newRequest("clip", true, true))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "clip.mp4"), p.OutputPath)
	assert.True(t, p.AudioOffered)
}

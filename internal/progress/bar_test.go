package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarReporter_DrawsPerStage(t *testing.T) {
	var buf bytes.Buffer
	r := NewBarReporter(&buf)

	n := int64(512)
	r.Update(Update{JobID: "j", Stage: StageVideo, Percent: 50, Bytes: &n})
	r.Update(Update{JobID: "j", Stage: StageAudio, Percent: -1, Bytes: &n})
	r.Update(Update{JobID: "j", Stage: StageMerging, Percent: 40})

	assert.Len(t, r.bars, 3)
	assert.EqualValues(t, 1024, r.bars["j/video"].GetMax64())
	assert.Contains(t, buf.String(), "video")

	r.Result(Result{JobID: "j", OutputPath: "/tmp/a.mp4", Message: "saved"})
	assert.Empty(t, r.bars)
	assert.Contains(t, buf.String(), "saved: /tmp/a.mp4")
}

func TestBarReporter_IgnoresUnknownMergePercent(t *testing.T) {
	r := NewBarReporter(&bytes.Buffer{})
	r.Update(Update{JobID: "j", Stage: StageMerging, Percent: -1})
	r.Update(Update{JobID: "j", Stage: StageMetadata, Percent: 0})
	assert.Empty(t, r.bars)
}

func TestBarReporter_Error(t *testing.T) {
	var buf bytes.Buffer
	r := NewBarReporter(&buf)
	n := int64(1)
	r.Update(Update{JobID: "j", Stage: StageVideo, Percent: 10, Bytes: &n})
	r.Update(Update{JobID: "j", Stage: StageError, Percent: -1})
	assert.Empty(t, r.bars)

	r.Result(Result{JobID: "j", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "error: boom")
}

package bilibili

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playURLResponse = `{
  "code": 0,
  "message": "0",
  "data": {
    "quality": 80,
    "format": "flv",
    "timelength": 100000,
    "accept_format": "hdflv2,flv,flv720,flv480,mp4",
    "accept_description": ["高清 1080P+", "高清 1080P", "高清 720P"],
    "accept_quality": [112, 80, 64],
    "video_codecid": 7,
    "dash": {
      "duration": 100,
      "minBufferTime": 1.5,
      "video": [
        {"id": 80, "baseUrl": "https://upos.example/80.m4s", "bandwidth": 800000, "mimeType": "video/mp4", "codecs": "avc1.640032", "width": 1920, "height": 1080, "frameRate": "30", "codecid": 7},
        {"id": 64, "baseUrl": "https://upos.example/64.m4s", "bandwidth": 400000, "codecs": "avc1.64001F", "width": 1280, "height": 720, "codecid": 7}
      ],
      "audio": [
        {"id": 30280, "baseUrl": "https://upos.example/30280.m4s", "bandwidth": 192000, "codecs": "mp4a.40.2"}
      ],
      "flac": {"audio": {"id": 30251, "baseUrl": "https://upos.example/flac.m4s", "bandwidth": 1000000, "codecs": "fLaC"}}
    }
  }
}`

func TestPlayURL(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(playURLResponse))
	})

	d, err := c.PlayURL(context.Background(), "BV1xx411c7mD", 279786, "SESSDATA=abc")
	require.NoError(t, err)

	assert.Equal(t, "/x/player/playurl", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "BV1xx411c7mD", q.Get("bvid"))
	assert.Equal(t, "279786", q.Get("cid"))
	assert.Equal(t, "127", q.Get("qn"))
	assert.Equal(t, "1", q.Get("fourk"))
	assert.Equal(t, "4048", q.Get("fnval"))
	assert.Equal(t, "SESSDATA=abc", got.Header.Get("Cookie"))
	assert.Equal(t, "https://www.bilibili.com/", got.Header.Get("Referer"))

	assert.Equal(t, 80, d.Quality)
	require.Len(t, d.Dash.Video, 2)
	require.Len(t, d.Dash.Audio, 1)
}

func TestSimplify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(playURLResponse))
	})
	d, err := c.PlayURL(context.Background(), "BV1", 1, "")
	require.NoError(t, err)

	video, audio := Simplify(d)
	require.Len(t, video, 2)
	require.Len(t, audio, 2)

	assert.Equal(t, "https://upos.example/80.m4s", video[0].URL)
	assert.Equal(t, 80, video[0].Quality)
	assert.Equal(t, "avc1.640032", video[0].Format)
	assert.True(t, strings.HasPrefix(video[0].Description, "高清 1080P ("), video[0].Description)
	assert.Contains(t, video[0].Description, "1920x1080")
	assert.EqualValues(t, 10_000_000, video[0].Size) // 800 kbit/s * 100 s / 8

	assert.Equal(t, 30280, audio[0].Quality)
	assert.Equal(t, "192K 192k", audio[0].Description)
	assert.EqualValues(t, 2_400_000, audio[0].Size)
	assert.Equal(t, 30251, audio[1].Quality)
}

func TestSimplifyFallsBackToTable(t *testing.T) {
	d := PlayURLData{TimeLength: 10_000}
	d.Dash.Video = []DashStream{{ID: 116, BaseURL: "u", Bandwidth: 8000}}
	video, audio := Simplify(d)
	require.Len(t, video, 1)
	assert.Empty(t, audio)
	assert.Equal(t, "1080P60 高帧率", video[0].Description)
	assert.EqualValues(t, 10_000, video[0].Size)
}

func TestQualityNames(t *testing.T) {
	assert.Equal(t, "4K 超清", VideoQualityName(120))
	assert.Equal(t, "qn 999", VideoQualityName(999))
	assert.Equal(t, "192K", AudioQualityName(30280))
	assert.Equal(t, "audio 1", AudioQualityName(1))
}

func TestTestStreamURL(t *testing.T) {
	var method, origin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		origin = r.Header.Get("Origin")
		if strings.Contains(r.URL.Path, "denied") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := New(Options{})

	code, err := c.TestStreamURL(context.Background(), srv.URL+"/ok.m4s", "SESSDATA=x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, http.MethodHead, method)
	assert.Equal(t, "https://www.bilibili.com", origin)

	code, err = c.TestStreamURL(context.Background(), srv.URL+"/denied.m4s?sig=secret", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotContains(t, err.Error(), "secret")
}

package bilibili

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilicili/internal/model"
)

const viewResponse = `{
  "code": 0,
  "message": "0",
  "data": {
    "bvid": "BV1xx411c7mD",
    "aid": 170001,
    "title": "测试视频",
    "desc": "desc",
    "pic": "https://i0.hdslb.com/cover.jpg",
    "owner": {"name": "uploader", "face": "https://i0.hdslb.com/face.jpg", "mid": 42},
    "duration": 212,
    "pages": [
      {"cid": 279786, "page": 1, "part": "intro", "duration": 100},
      {"cid": 279787, "page": 2, "part": "main", "duration": 112}
    ]
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{APIBase: srv.URL, PassportBase: srv.URL})
}

func TestVideoInfoByBVID(t *testing.T) {
	var gotQuery, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/x/web-interface/view", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(viewResponse))
	})

	v, err := c.VideoInfo(context.Background(), "BV1xx411c7mD")
	require.NoError(t, err)
	assert.Equal(t, "bvid=BV1xx411c7mD", gotQuery)
	assert.Equal(t, UserAgent, gotUA)

	assert.Equal(t, "测试视频", v.Title)
	assert.EqualValues(t, 170001, v.AID)
	assert.Equal(t, "uploader", v.Owner.Name)
	require.Len(t, v.Pages, 2)
	assert.EqualValues(t, 279787, v.Pages[1].CID)
}

func TestVideoInfoByAID(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(viewResponse))
	})
	_, err := c.VideoInfo(context.Background(), "av170001")
	require.NoError(t, err)
	assert.Equal(t, "aid=170001", gotQuery)
}

func TestVideoInfoInvalidID(t *testing.T) {
	c := New(Options{})
	for _, id := range []string{"", "xyz", "avNaN"} {
		_, err := c.VideoInfo(context.Background(), id)
		assert.Truef(t, errors.Is(err, model.ErrMissingInput), "id %q: %v", id, err)
	}
}

func TestVideoInfoAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":-404,"message":"啥都木有","data":null}`))
	})
	_, err := c.VideoInfo(context.Background(), "BV1xx411c7mD")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, -404, apiErr.Code)
	assert.True(t, errors.Is(err, model.ErrTransport))
	assert.Contains(t, err.Error(), "啥都木有")
}

func TestVideoInfoHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusPreconditionFailed)
	})
	_, err := c.VideoInfo(context.Background(), "BV1xx411c7mD")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTransport))
	assert.Contains(t, err.Error(), "412")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestVideoInfoMissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"message":"0"}`))
	})
	_, err := c.VideoInfo(context.Background(), "BV1xx411c7mD")
	assert.True(t, errors.Is(err, model.ErrTransport))
}

func TestPageAndTitle(t *testing.T) {
	v := VideoData{BVID: "BV1", Title: "Show", Pages: []VideoPage{{CID: 1, Page: 1, Part: "a"}, {CID: 2, Page: 2, Part: "b"}}}

	p, err := v.Page(2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.CID)
	assert.Equal(t, "Show P2 b", v.TitleFor(p))

	_, err = v.Page(3)
	assert.True(t, errors.Is(err, model.ErrMissingInput))

	single := VideoData{Title: "Solo", Pages: []VideoPage{{CID: 9, Page: 1, Part: "whatever"}}}
	sp, err := single.Page(1)
	require.NoError(t, err)
	assert.Equal(t, "Solo", single.TitleFor(sp))
}

func TestRequest(t *testing.T) {
	v := VideoData{BVID: "BV1", Title: "Solo", Pages: []VideoPage{{CID: 9, Page: 1, Duration: 30}}}
	req := Request(v, v.Pages[0], model.StreamDescriptor{URL: "v"}, model.StreamDescriptor{URL: "a"}, "SESSDATA=x")
	assert.Equal(t, "Solo", req.Title)
	assert.Equal(t, "BV1", req.VideoID)
	assert.Equal(t, "SESSDATA=x", req.Cookies)
	assert.Equal(t, 30.0, req.Duration)
}

func TestStreamHeaders(t *testing.T) {
	h := StreamHeaders("BV1xx411c7mD", "SESSDATA=abc; bili_jct=def")
	assert.Equal(t, "https://www.bilibili.com/video/BV1xx411c7mD", h.Get("Referer"))
	assert.Equal(t, "https://www.bilibili.com", h.Get("Origin"))
	assert.Equal(t, "SESSDATA=abc; bili_jct=def", h.Get("Cookie"))
	assert.Equal(t, UserAgent, h.Get("User-Agent"))
	assert.Equal(t, "cors", h.Get("Sec-Fetch-Mode"))
	assert.Empty(t, h.Get("Accept-Encoding"), "transport negotiates compression")

	anon := StreamHeaders("", "")
	assert.Equal(t, "https://www.bilibili.com/", anon.Get("Referer"))
	assert.Empty(t, anon.Get("Cookie"))
}

package bilibili

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cilicili/internal/model"
)

// VideoData is the metadata of one video (one or more pages).
type VideoData struct {
	BVID     string      `json:"bvid"`
	AID      int64       `json:"aid"`
	Title    string      `json:"title"`
	Desc     string      `json:"desc"`
	Pic      string      `json:"pic"`
	Owner    VideoOwner  `json:"owner"`
	Duration int         `json:"duration"`
	Pages    []VideoPage `json:"pages"`
}

type VideoOwner struct {
	Name string `json:"name"`
	Face string `json:"face"`
	MID  int64  `json:"mid"`
}

// VideoPage is one part of a multi-part upload. CID selects its streams.
type VideoPage struct {
	CID      int64  `json:"cid"`
	Page     int    `json:"page"`
	Part     string `json:"part"`
	Duration int    `json:"duration"`
}

// Page returns the 1-based page n.
func (v VideoData) Page(n int) (VideoPage, error) {
	for _, p := range v.Pages {
		if p.Page == n {
			return p, nil
		}
	}
	if n >= 1 && n <= len(v.Pages) {
		return v.Pages[n-1], nil
	}
	return VideoPage{}, model.NewError(model.ErrMissingInput, "select page", v.BVID, fmt.Errorf("page %d of %d", n, len(v.Pages)))
}

// TitleFor returns the download title for page p. Multi-part uploads get
// the page number and part name appended.
func (v VideoData) TitleFor(p VideoPage) string {
	if len(v.Pages) <= 1 || p.Part == "" || p.Part == v.Title {
		return v.Title
	}
	return fmt.Sprintf("%s P%d %s", v.Title, p.Page, p.Part)
}

// VideoInfo fetches metadata for a "BV..." or "av<n>" id.
func (c *Client) VideoInfo(ctx context.Context, id string) (VideoData, error) {
	q := url.Values{}
	switch {
	case strings.HasPrefix(id, "BV"):
		q.Set("bvid", id)
	case strings.HasPrefix(strings.ToLower(id), "av"):
		aid, err := strconv.ParseUint(id[2:], 10, 64)
		if err != nil {
			return VideoData{}, model.NewError(model.ErrMissingInput, "video info", id, fmt.Errorf("invalid av number"))
		}
		q.Set("aid", strconv.FormatUint(aid, 10))
	default:
		return VideoData{}, model.NewError(model.ErrMissingInput, "video info", id, fmt.Errorf("invalid video id format"))
	}

	var v VideoData
	if err := c.getJSON(ctx, c.http, c.apiBase+"/x/web-interface/view", q, apiHeaders(""), &v); err != nil {
		return VideoData{}, err
	}
	return v, nil
}

// Request builds a download request for one page with the chosen streams.
func Request(v VideoData, p VideoPage, video, audio model.StreamDescriptor, cookies string) model.DownloadRequest {
	return model.DownloadRequest{
		Title:    v.TitleFor(p),
		VideoID:  v.BVID,
		Video:    video,
		Audio:    audio,
		Cookies:  cookies,
		Duration: float64(p.Duration),
	}
}

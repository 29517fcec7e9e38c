package bilibili

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cilicili/internal/model"
	"cilicili/internal/util/bitrate"
)

// DashStream is one DASH representation. Audio entries leave the video
// dimensions empty.
type DashStream struct {
	ID        int      `json:"id"`
	BaseURL   string   `json:"baseUrl"`
	BackupURL []string `json:"backupUrl"`
	Bandwidth int64    `json:"bandwidth"`
	MimeType  string   `json:"mimeType"`
	Codecs    string   `json:"codecs"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	FrameRate string   `json:"frameRate"`
	CodecID   int      `json:"codecid"`
}

type DashData struct {
	Duration      int          `json:"duration"`
	MinBufferTime float64      `json:"minBufferTime"`
	Video         []DashStream `json:"video"`
	Audio         []DashStream `json:"audio"`
	Flac          *struct {
		Audio *DashStream `json:"audio"`
	} `json:"flac"`
}

// PlayURLData is the stream listing for one page.
type PlayURLData struct {
	Quality           int      `json:"quality"`
	Format            string   `json:"format"`
	TimeLength        int64    `json:"timelength"`
	AcceptFormat      string   `json:"accept_format"`
	AcceptDescription []string `json:"accept_description"`
	AcceptQuality     []int    `json:"accept_quality"`
	VideoCodecID      int      `json:"video_codecid"`
	Dash              DashData `json:"dash"`
}

// PlayURL lists the DASH streams of page cid. High qualities require the
// cookies of a logged-in (and for some, VIP) account.
func (c *Client) PlayURL(ctx context.Context, bvid string, cid int64, cookies string) (PlayURLData, error) {
	q := url.Values{}
	q.Set("bvid", bvid)
	q.Set("cid", strconv.FormatInt(cid, 10))
	q.Set("qn", "127")
	q.Set("fourk", "1")
	q.Set("fnval", "4048")

	var d PlayURLData
	if err := c.getJSON(ctx, c.http, c.apiBase+"/x/player/playurl", q, apiHeaders(cookies), &d); err != nil {
		return PlayURLData{}, err
	}
	return d, nil
}

var videoQualities = map[int]string{
	127: "8K 超高清",
	126: "杜比视界",
	125: "HDR 真彩",
	120: "4K 超清",
	116: "1080P60 高帧率",
	112: "1080P+ 高码率",
	80:  "1080P 高清",
	74:  "720P60 高帧率",
	64:  "720P 高清",
	32:  "480P 清晰",
	16:  "360P 流畅",
	6:   "240P 极速",
}

var audioQualities = map[int]string{
	30216: "64K",
	30232: "132K",
	30280: "192K",
	30250: "杜比全景声",
	30251: "Hi-Res 无损",
}

// VideoQualityName returns the display name of a video quality id.
func VideoQualityName(qn int) string {
	if s, ok := videoQualities[qn]; ok {
		return s
	}
	return fmt.Sprintf("qn %d", qn)
}

// AudioQualityName returns the display name of an audio quality id.
func AudioQualityName(id int) string {
	if s, ok := audioQualities[id]; ok {
		return s
	}
	return fmt.Sprintf("audio %d", id)
}

// Simplify flattens a listing into stream descriptors. Descriptions come
// from the server's accept lists when present, else from a built-in table.
// Sizes are estimated from bandwidth and duration.
func Simplify(d PlayURLData) (video, audio []model.StreamDescriptor) {
	duration := float64(d.Dash.Duration)
	if duration == 0 && d.TimeLength > 0 {
		duration = (time.Duration(d.TimeLength) * time.Millisecond).Seconds()
	}

	desc := make(map[int]string, len(d.AcceptQuality))
	for i, q := range d.AcceptQuality {
		if i < len(d.AcceptDescription) {
			desc[q] = d.AcceptDescription[i]
		}
	}

	for _, s := range d.Dash.Video {
		name, ok := desc[s.ID]
		if !ok {
			name = VideoQualityName(s.ID)
		}
		if s.Width > 0 && s.Height > 0 {
			name = fmt.Sprintf("%s (%dx%d %s)", name, s.Width, s.Height, s.Codecs)
		}
		video = append(video, model.StreamDescriptor{
			URL:         s.BaseURL,
			Quality:     s.ID,
			Format:      s.Codecs,
			Description: name,
			Size:        bitrate.EstimateBytes(s.Bandwidth, duration),
		})
	}

	audioStreams := d.Dash.Audio
	if d.Dash.Flac != nil && d.Dash.Flac.Audio != nil {
		audioStreams = append(audioStreams, *d.Dash.Flac.Audio)
	}
	for _, s := range audioStreams {
		audio = append(audio, model.StreamDescriptor{
			URL:         s.BaseURL,
			Quality:     s.ID,
			Format:      s.Codecs,
			Description: AudioQualityName(s.ID) + " " + bitrate.Kbps(s.Bandwidth),
			Size:        bitrate.EstimateBytes(s.Bandwidth, duration),
		})
	}
	return video, audio
}

// TestStreamURL issues a HEAD request for a stream URL and returns the
// status code. Non-2xx is reported as an error.
func (c *Client) TestStreamURL(ctx context.Context, streamURL, cookies string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return 0, model.NewError(model.ErrTransport, "build request", streamURL, err)
	}
	h := apiHeaders(cookies)
	h.Set("Origin", siteOrigin)
	h.Set("User-Agent", UserAgent)
	req.Header = h

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, model.NewError(model.ErrTransport, "probe stream", redactQuery(streamURL), err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, model.NewError(model.ErrTransport, "probe stream", redactQuery(streamURL), fmt.Errorf("HTTP %s", resp.Status))
	}
	return resp.StatusCode, nil
}

func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}

package pipeline

import (
	"context"
	"errors"

	"cilicili/internal/bilibili"
	"cilicili/internal/downloader"
	"cilicili/internal/model"
	"cilicili/internal/util"
)

// Resolver turns a video id or URL into a DownloadRequest by querying the
// platform for metadata and DASH streams.
type Resolver struct {
	Client  *bilibili.Client
	Quality model.QualityPreset
	// QN, when positive, selects the video variant by platform quality id
	// instead of Quality.
	QN      int
	Cookies string
	NoAudio bool
}

// Resolved is everything learned while resolving one page of a video.
type Resolved struct {
	Video   bilibili.VideoData
	Page    bilibili.VideoPage
	Videos  []model.StreamDescriptor
	Audios  []model.StreamDescriptor
	Request model.DownloadRequest
}

// Streams queries metadata and the offered streams without selecting any.
// page is 1-based.
func (r Resolver) Streams(ctx context.Context, input string, page int) (Resolved, error) {
	id, _, err := util.ParseVideoID(input)
	if err != nil {
		return Resolved{}, model.NewError(model.ErrMissingInput, "parse id", input, err)
	}
	if page <= 0 {
		page = 1
	}
	v, err := r.Client.VideoInfo(ctx, id)
	if err != nil {
		return Resolved{}, err
	}
	p, err := v.Page(page)
	if err != nil {
		return Resolved{}, err
	}
	d, err := r.Client.PlayURL(ctx, v.BVID, p.CID, r.Cookies)
	if err != nil {
		return Resolved{}, err
	}
	videos, audios := bilibili.Simplify(d)
	return Resolved{Video: v, Page: p, Videos: videos, Audios: audios}, nil
}

// Resolve picks the video and audio streams for the configured preset, or
// the video by QN when set.
// A missing audio list leaves the audio descriptor empty.
func (r Resolver) Resolve(ctx context.Context, input string, page int) (Resolved, error) {
	res, err := r.Streams(ctx, input, page)
	if err != nil {
		return Resolved{}, err
	}
	preset := r.Quality
	if preset == "" {
		preset = model.PresetBest
	}
	var video model.StreamDescriptor
	if r.QN > 0 {
		video, err = downloader.SelectQuality(res.Videos, r.QN)
	} else {
		video, err = downloader.SelectStream(res.Videos, preset)
	}
	if err != nil {
		return Resolved{}, model.NewError(model.ErrMissingInput, "select video", res.Video.BVID, err)
	}
	var audio model.StreamDescriptor
	if !r.NoAudio {
		audio, err = downloader.SelectStream(res.Audios, preset)
		if err != nil && !errors.Is(err, downloader.ErrNoStreams) {
			return Resolved{}, err
		}
	}
	res.Request = bilibili.Request(res.Video, res.Page, video, audio, r.Cookies)
	return res, nil
}

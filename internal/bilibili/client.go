// Package bilibili talks to the bilibili web API: video metadata, DASH
// stream URLs, QR-code login and the logged-in user's profile.
package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cilicili/internal/model"
)

const (
	DefaultAPIBase      = "https://api.bilibili.com"
	DefaultPassportBase = "https://passport.bilibili.com"

	// UserAgent is a desktop browser string; the CDN rejects requests without one.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	siteOrigin  = "https://www.bilibili.com"
	siteReferer = "https://www.bilibili.com/"

	defaultTimeout = 30 * time.Second
)

// APIError is a well-formed API response with a non-zero code.
type APIError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s", e.Endpoint, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return model.ErrTransport }

// Options configures a Client. Zero values select the public endpoints.
type Options struct {
	APIBase      string
	PassportBase string
	HTTP         *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	apiBase      string
	passportBase string
	http         *http.Client
}

// New returns a Client.
func New(opts Options) *Client {
	c := &Client{
		apiBase:      strings.TrimRight(opts.APIBase, "/"),
		passportBase: strings.TrimRight(opts.PassportBase, "/"),
		http:         opts.HTTP,
	}
	if c.apiBase == "" {
		c.apiBase = DefaultAPIBase
	}
	if c.passportBase == "" {
		c.passportBase = DefaultPassportBase
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	return c
}

// envelope is the common response wrapper of every endpoint.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// getJSON performs a GET and decodes the envelope's data into out.
func (c *Client) getJSON(ctx context.Context, client *http.Client, endpoint string, query url.Values, header http.Header, out any) error {
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.NewError(model.ErrTransport, "build request", endpoint, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return model.NewError(model.ErrTransport, "request", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return model.NewError(model.ErrTransport, "read response", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		e := model.NewError(model.ErrTransport, "request", endpoint, fmt.Errorf("HTTP %s", resp.Status))
		e.Detail = preview(body)
		return e
	}
	slog.Debug("api response", "endpoint", endpoint, "body", preview(body))

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.NewError(model.ErrTransport, "decode response", endpoint, err)
	}
	if env.Code != 0 {
		return &APIError{Endpoint: endpoint, Code: env.Code, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return model.NewError(model.ErrTransport, "decode response", endpoint, errors.New("response has no data"))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return model.NewError(model.ErrTransport, "decode response", endpoint, err)
	}
	return nil
}

// preview returns at most 500 runes of body for logs.
func preview(body []byte) string {
	s := string(body)
	if r := []rune(s); len(r) > 500 {
		return string(r[:500]) + "..."
	}
	return s
}

// StreamHeaders returns the headers the media CDN expects on a stream fetch
// for the given video. cookies is sent verbatim when non-empty.
func StreamHeaders(bvid, cookies string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", UserAgent)
	if bvid != "" {
		h.Set("Referer", siteOrigin+"/video/"+bvid)
	} else {
		h.Set("Referer", siteReferer)
	}
	h.Set("Origin", siteOrigin)
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	h.Set("Connection", "keep-alive")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "cross-site")
	if cookies != "" {
		h.Set("Cookie", cookies)
	}
	return h
}

func apiHeaders(cookies string) http.Header {
	h := http.Header{}
	h.Set("Referer", siteReferer)
	if cookies != "" {
		h.Set("Cookie", cookies)
	}
	return h
}

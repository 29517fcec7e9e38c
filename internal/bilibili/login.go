package bilibili

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"cilicili/internal/model"
)

// ErrQRExpired is returned by WaitForLogin when the code expires unscanned.
var ErrQRExpired = errors.New("login code expired")

// PollStatus is the state of a QR-code login attempt.
type PollStatus int

const (
	PollSuccess    PollStatus = 0
	PollExpired    PollStatus = 86038
	PollScanned    PollStatus = 86090
	PollNotScanned PollStatus = 86101
)

func (s PollStatus) String() string {
	switch s {
	case PollSuccess:
		return "confirmed"
	case PollExpired:
		return "expired"
	case PollScanned:
		return "scanned, waiting for confirmation"
	case PollNotScanned:
		return "waiting for scan"
	default:
		return "unknown"
	}
}

// Done reports whether polling should stop.
func (s PollStatus) Done() bool {
	return s == PollSuccess || s == PollExpired
}

// QRCode is a login code: URL is rendered as a QR image, Key is polled.
type QRCode struct {
	URL string `json:"url"`
	Key string `json:"qrcode_key"`
}

// PollResult is one poll of a QR login. Cookies is set on success.
type PollResult struct {
	Status       PollStatus
	Message      string
	URL          string
	RefreshToken string
	Timestamp    int64
	Cookies      string
}

// QRCode requests a new login code.
func (c *Client) QRCode(ctx context.Context) (QRCode, error) {
	var q QRCode
	err := c.getJSON(ctx, c.http, c.passportBase+"/x/passport-login/web/qrcode/generate", nil, nil, &q)
	return q, err
}

// PollQRCode checks the state of a login code. On success the session
// cookies set by the server are returned as a Cookie header value.
func (c *Client) PollQRCode(ctx context.Context, key string) (PollResult, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return PollResult{}, err
	}
	client := &http.Client{
		Transport: c.http.Transport,
		Timeout:   c.http.Timeout,
		Jar:       jar,
	}

	endpoint := c.passportBase + "/x/passport-login/web/qrcode/poll"
	var data struct {
		Code         int    `json:"code"`
		Message      string `json:"message"`
		URL          string `json:"url"`
		RefreshToken string `json:"refresh_token"`
		Timestamp    int64  `json:"timestamp"`
	}
	if err := c.getJSON(ctx, client, endpoint, url.Values{"qrcode_key": {key}}, nil, &data); err != nil {
		return PollResult{}, err
	}

	res := PollResult{
		Status:       PollStatus(data.Code),
		Message:      data.Message,
		URL:          data.URL,
		RefreshToken: data.RefreshToken,
		Timestamp:    data.Timestamp,
	}
	if u, err := url.Parse(endpoint); err == nil {
		res.Cookies = cookieHeader(jar.Cookies(u))
	}
	return res, nil
}

// WaitForLogin polls key every interval until the login is confirmed, the
// code expires or ctx ends. onStatus, when set, sees every status change.
func (c *Client) WaitForLogin(ctx context.Context, key string, interval time.Duration, onStatus func(PollStatus)) (PollResult, error) {
	t := time.NewTicker(interval)
	defer t.Stop()
	last := PollStatus(-1)
	for {
		res, err := c.PollQRCode(ctx, key)
		if err != nil {
			return PollResult{}, err
		}
		if res.Status != last && onStatus != nil {
			onStatus(res.Status)
		}
		last = res.Status
		switch res.Status {
		case PollSuccess:
			if res.Cookies == "" {
				return res, model.NewError(model.ErrTransport, "login", "", errors.New("server confirmed login but set no cookies"))
			}
			return res, nil
		case PollExpired:
			return res, ErrQRExpired
		}
		select {
		case <-ctx.Done():
			return PollResult{}, ctx.Err()
		case <-t.C:
		}
	}
}

func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

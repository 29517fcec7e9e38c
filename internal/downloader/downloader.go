// Package downloader fetches DASH media streams over HTTP.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cilicili/internal/model"
	"cilicili/internal/util"
	"cilicili/internal/util/format"
)

// DefaultTimeout bounds a whole stream transfer. Media payloads are large.
const DefaultTimeout = 5 * time.Minute

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Options controls fetch behavior.
type Options struct {
	Timeout time.Duration // Whole-request timeout; DefaultTimeout when zero.
	Client  *http.Client  // Optional; overrides Timeout when set.
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client *http.Client
}

// New returns an HTTPFetcher. No retries are performed.
func New(opts Options) *HTTPFetcher {
	c := opts.Client
	if c == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{client: c}
}

// Fetch GETs rawURL with header and writes the body to dest. The body is
// streamed into "<dest>.part" and renamed over dest only after a complete,
// non-empty transfer, so a failure never leaves a truncated dest behind.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, header http.Header, dest string, onProgress ProgressFunc) (int64, error) {
	if strings.TrimSpace(rawURL) == "" {
		return 0, model.NewError(model.ErrMissingInput, "fetch", dest, errors.New("stream URL missing"))
	}
	if dest == "" {
		return 0, model.NewError(model.ErrFilesystem, "fetch", "", errors.New("destination path is required"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, model.NewError(model.ErrTransport, "build request", redact(rawURL), err)
	}
	if header != nil {
		req.Header = header.Clone()
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, model.NewError(model.ErrTransport, "request", redact(rawURL), err)
	}
	defer resp.Body.Close()

	slog.Debug("stream response", "url", redact(rawURL), "status", resp.StatusCode, "content_length", resp.ContentLength)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := model.NewError(model.ErrTransport, "request", redact(rawURL), fmt.Errorf("HTTP %s", resp.Status))
		e.Detail = strings.TrimSpace(string(body))
		if e.Detail == "" {
			e.Detail = "(empty response body)"
		}
		return 0, e
	}

	part := dest + ".part"
	file, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, model.NewError(model.ErrFilesystem, "create", part, err)
	}

	pw := &progressWriter{total: resp.ContentLength, onProgress: onProgress}
	n, copyErr := io.Copy(io.MultiWriter(file, pw), resp.Body)
	closeErr := file.Close()
	switch {
	case copyErr != nil:
		_ = util.RemoveIfExists(part)
		var pathErr *os.PathError
		if errors.As(copyErr, &pathErr) {
			return 0, model.NewError(model.ErrFilesystem, "write", part, copyErr)
		}
		return 0, model.NewError(model.ErrTransport, "read body", redact(rawURL), copyErr)
	case closeErr != nil:
		_ = util.RemoveIfExists(part)
		return 0, model.NewError(model.ErrFilesystem, "write", part, closeErr)
	case n == 0:
		_ = util.RemoveIfExists(part)
		return 0, model.NewError(model.ErrTransport, "read body", redact(rawURL), errors.New("empty response body"))
	}
	pw.flush()

	if err := os.Rename(part, dest); err != nil {
		_ = util.RemoveIfExists(part)
		return 0, model.NewError(model.ErrFilesystem, "rename", dest, err)
	}

	elapsed := time.Since(start)
	slog.Info("stream saved", "path", dest, "size", format.HumanizeBytes(n), "rate", format.Rate(n, elapsed))
	return n, nil
}

// redact drops the query string, which carries signed tokens.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

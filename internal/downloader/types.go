package downloader

import (
	"context"
	"net/http"
)

// ProgressFunc observes a running fetch. total is -1 when the server sent
// no Content-Length.
type ProgressFunc func(written, total int64)

// Fetcher retrieves one remote byte stream into dest.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, header http.Header, dest string, onProgress ProgressFunc) (int64, error)
}

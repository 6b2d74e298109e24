// Package fetcher executes HTTP requests against the HealthMap backend with
// per-host rate limiting, request ids and optional retry, and reads local
// XLSX sheets for bulk input.
package fetcher

import (
	"context"
	"fmt"
	"io"
)

// Fetcher defines the interface for talking to a remote JSON API.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// GetJSON fetches the URL and decodes the JSON body into out.
	GetJSON(ctx context.Context, url string, out any) error

	// PostJSON encodes in as the request body and decodes the JSON response into out.
	// out may be nil when the response body is not needed.
	PostJSON(ctx context.Context, url string, in, out any) error
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

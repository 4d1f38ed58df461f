// Package pipeline drives resolved search hits through download, archive
// assembly, object-store upload and record persistence.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const downloadTimeout = 2 * time.Minute

// DownloadError reports a failed binary retrieval. Callers catch it per
// item; one failed slot never aborts the batch.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download %s: status %d", e.URL, e.StatusCode)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Downloader retrieves binary content for a resolved asset URL.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader materializes full response bodies in memory.
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader builds a downloader with a default timeout when client
// is nil.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &HTTPDownloader{client: client}
}

// Fetch downloads url and returns the body, or a *DownloadError on any
// network failure or non-2xx status.
func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	return data, nil
}

var _ Downloader = (*HTTPDownloader)(nil)

// Package fetcher downloads EDGAR index and filing documents over HTTP
// and parses the tabular sources used by the ticker import.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote documents.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadBytes fetches the URL and returns the full response body.
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// FileMetadata is the remote file record resolved before a download.
type FileMetadata struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	ContentType string `json:"content-type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Attempts = metadataRetries + 1.
const metadataRetries = 2

// FileMetadata fetches a file record, retrying transient upstream failures
// with exponential backoff. Client-class statuses are not retried.
func (c *Client) FileMetadata(ctx context.Context, fileID int) (*FileMetadata, error) {
	var meta FileMetadata

	operation := func() error {
		resp, err := c.Get(ctx, fmt.Sprintf("/files/%d", fileID), nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(&StatusError{Status: resp.StatusCode})
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{Status: resp.StatusCode}
		}
		return json.NewDecoder(resp.Body).Decode(&meta)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, metadataRetries), ctx)); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Download opens a streaming GET against the file's advertised download
// URL. It runs over the untimed streaming client so a slow transfer is
// never cut off mid-body; the request context is the only cancellation.
// The caller owns the response body and forwards bytes as they arrive.
func (c *Client) Download(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.doWith(ctx, c.stream, rawURL)
}

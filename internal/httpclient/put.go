package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// DoPUT uploads a calendar object. A non-empty etag is sent as If-Match for
// optimistic locking; new objects pass an empty etag.
func (w *wrapper) DoPUT(ctx context.Context, urlStr string, etag string, data []byte) (string, error) {
	w.logger.Debug("starting PUT request", "url", urlStr, "etag", etag, "data_length", len(data))

	resolvedURL, err := w.resolveURL(urlStr)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, resolvedURL.String(), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create PUT request: %w", err)
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("PUT request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("PUT failed with status %d", resp.StatusCode)
	}

	newEtag := resp.Header.Get("ETag")
	w.logger.Debug("PUT request complete", "status", resp.Status, "new_etag", newEtag)
	return newEtag, nil
}

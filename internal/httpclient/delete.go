package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

// DoDELETE removes a calendar object. A non-empty etag is sent as If-Match.
// A 404 answer maps to ErrNotFound so callers can treat it as already done.
func (w *wrapper) DoDELETE(ctx context.Context, urlStr string, etag string) error {
	w.logger.Debug("starting DELETE request", "url", urlStr, "etag", etag)

	resolvedURL, err := w.resolveURL(urlStr)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, resolvedURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create DELETE request: %w", err)
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, urlStr)
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("DELETE failed with status %d", resp.StatusCode)
	}

	w.logger.Debug("DELETE request complete", "status", resp.Status)
	return nil
}

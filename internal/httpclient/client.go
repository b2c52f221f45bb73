// Package httpclient wraps http.Client with the CalDAV verbs this tool
// needs: PROPFIND for discovery, REPORT for listing events, PUT and DELETE
// for writing copies. Responses are multistatus XML parsed with etree.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// ErrNotFound is returned when the server answers 404 for a resource.
var ErrNotFound = errors.New("resource not found")

// Wrapper exposes the CalDAV HTTP operations used by the caldav package.
type Wrapper interface {
	DoPROPFIND(ctx context.Context, url string, depth int, props ...string) (*PropfindResponse, error)
	DoREPORT(ctx context.Context, url string, depth int, query any) (*ReportResponse, error)
	DoPUT(ctx context.Context, url string, etag string, data []byte) (newEtag string, err error)
	DoDELETE(ctx context.Context, url string, etag string) error
}

type wrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// New creates a wrapper resolving relative URLs against baseURL.
func New(client *http.Client, baseURL url.URL, logger *slog.Logger) (Wrapper, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &wrapper{client: client, baseURL: baseURL, logger: logger}, nil
}

// resolveURL resolves a URL string against the base URL.
func (w *wrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return w.baseURL.ResolveReference(ref), nil
}

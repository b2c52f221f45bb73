// Package caldav implements the engine's SourceReader and DestinationStore
// collaborators on top of a CalDAV server: calendar discovery via PROPFIND,
// event listing via calendar-query REPORT, and copy creation/removal via
// PUT/DELETE. Calendars are addressed by display name, as in the
// configuration.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/illixion/CalendarTransformer/engine"
	"github.com/illixion/CalendarTransformer/internal/httpclient"
)

// Client talks to one CalDAV account.
type Client struct {
	http   httpclient.Wrapper
	logger *slog.Logger

	destName string
	destURL  string

	// calendars maps display names to collection hrefs, resolved by Connect.
	calendars map[string]string
	// copyURLs maps copy UIDs to object hrefs, filled by ListCopies and
	// extended by Create.
	copyURLs map[string]string
}

// New builds a client for the given server and account. destCalendar is the
// display name of the calendar copies are written to; it is resolved when
// Connect runs.
func New(serverURL, username, password, destCalendar string, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}
	if destCalendar == "" {
		return nil, fmt.Errorf("destination calendar name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := httpclient.NewBasicAuthTransport(username, password, nil, logger)
	hc := &http.Client{Transport: transport, Timeout: 30 * time.Second}
	wrap, err := httpclient.New(hc, *base, logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:     wrap,
		logger:   logger,
		destName: destCalendar,
		copyURLs: make(map[string]string),
	}, nil
}

// Connect discovers the account's calendar collections and resolves the
// destination calendar. It walks current-user-principal to
// calendar-home-set, then lists the home set's child collections.
func (c *Client) Connect(ctx context.Context) error {
	principal, err := c.findPrincipal(ctx)
	if err != nil {
		return err
	}
	home, err := c.findCalendarHome(ctx, principal)
	if err != nil {
		return err
	}

	resp, err := c.http.DoPROPFIND(ctx, home, 1, "resourcetype", "displayname")
	if err != nil {
		return fmt.Errorf("%w: listing calendar home %q: %v", engine.ErrDestinationUnavailable, home, err)
	}

	c.calendars = make(map[string]string)
	for href, props := range resp.Resources {
		if !props.IsCalendar || props.DisplayName == "" {
			continue
		}
		c.calendars[props.DisplayName] = href
	}
	c.logger.Debug("discovered calendars", "count", len(c.calendars))

	dest, ok := c.calendars[c.destName]
	if !ok {
		return fmt.Errorf("%w: destination calendar %q not found", engine.ErrDestinationUnavailable, c.destName)
	}
	c.destURL = dest
	return nil
}

func (c *Client) findPrincipal(ctx context.Context) (string, error) {
	resp, err := c.http.DoPROPFIND(ctx, "", 0, "current-user-principal")
	if err != nil {
		return "", fmt.Errorf("%w: principal discovery: %v", engine.ErrDestinationUnavailable, err)
	}
	for _, props := range resp.Resources {
		if props.CurrentUserPrincipal != "" {
			return props.CurrentUserPrincipal, nil
		}
	}
	return "", fmt.Errorf("%w: server reported no current-user-principal", engine.ErrDestinationUnavailable)
}

func (c *Client) findCalendarHome(ctx context.Context, principal string) (string, error) {
	resp, err := c.http.DoPROPFIND(ctx, principal, 0, "calendar-home-set")
	if err != nil {
		return "", fmt.Errorf("%w: calendar home discovery: %v", engine.ErrDestinationUnavailable, err)
	}
	for _, props := range resp.Resources {
		if props.CalendarHomeSet != "" {
			return props.CalendarHomeSet, nil
		}
	}
	return "", fmt.Errorf("%w: principal %q has no calendar-home-set", engine.ErrDestinationUnavailable, principal)
}

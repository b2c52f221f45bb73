package caldav

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/illixion/CalendarTransformer/engine"
	"github.com/illixion/CalendarTransformer/event"
	"github.com/illixion/CalendarTransformer/internal/httpclient"
)

// ListCopies implements engine.DestinationStore. Objects without an
// X-ORIGINAL-UID stamp were not created by this tool and are left alone.
// The copy UID to object href mapping needed by Delete is rebuilt here.
func (c *Client) ListCopies(ctx context.Context) ([]event.Copy, error) {
	resp, err := c.http.DoREPORT(ctx, c.destURL, 1, eventQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: querying destination: %v", engine.ErrDestinationUnavailable, err)
	}

	c.copyURLs = make(map[string]string)
	var copies []event.Copy
	for _, obj := range resp.Objects {
		if obj.CalendarData == "" {
			continue
		}
		cal, err := ical.NewDecoder(strings.NewReader(obj.CalendarData)).Decode()
		if err != nil {
			c.logger.Warn("skipping unparseable destination object", "href", obj.Href, "error", err)
			continue
		}
		for _, ie := range cal.Events() {
			cp, ok := decodeCopy(ie)
			if !ok {
				c.logger.Debug("ignoring foreign destination event", "href", obj.Href)
				continue
			}
			c.copyURLs[cp.CopyUID] = obj.Href
			copies = append(copies, cp)
		}
	}
	return copies, nil
}

// Create implements engine.DestinationStore. The new copy gets a random UID
// as its destination identity; the source UID rides along as metadata.
func (c *Client) Create(ctx context.Context, ev event.Event) (string, error) {
	copyUID := uuid.New().String()
	data, err := encodeEvent(ev, copyUID)
	if err != nil {
		return "", err
	}

	href, err := objectHref(c.destURL, copyUID)
	if err != nil {
		return "", err
	}
	if _, err := c.http.DoPUT(ctx, href, "", data); err != nil {
		return "", fmt.Errorf("%w: creating copy of %q: %v", engine.ErrDestinationUnavailable, ev.UID, err)
	}

	c.copyURLs[copyUID] = href
	return copyUID, nil
}

// Delete implements engine.DestinationStore.
func (c *Client) Delete(ctx context.Context, copyUID string) error {
	href, ok := c.copyURLs[copyUID]
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrCopyNotFound, copyUID)
	}
	if err := c.http.DoDELETE(ctx, href, ""); err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return fmt.Errorf("%w: %q", engine.ErrCopyNotFound, copyUID)
		}
		return fmt.Errorf("%w: deleting %q: %v", engine.ErrDestinationUnavailable, copyUID, err)
	}
	delete(c.copyURLs, copyUID)
	return nil
}

// objectHref builds the object path for a new copy inside the collection.
func objectHref(collection, copyUID string) (string, error) {
	base, err := url.Parse(collection)
	if err != nil {
		return "", fmt.Errorf("failed to parse collection URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(copyUID + ".ics")
	if err != nil {
		return "", fmt.Errorf("failed to parse object URL: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

package caldav

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-ical"

	"github.com/illixion/CalendarTransformer/engine"
	"github.com/illixion/CalendarTransformer/event"
)

// ListEvents implements engine.SourceReader. Malformed events are skipped
// with a warning; only transport failures abort the listing.
func (c *Client) ListEvents(ctx context.Context, calendar string) ([]event.Event, error) {
	href, ok := c.calendars[calendar]
	if !ok {
		return nil, fmt.Errorf("%w: calendar %q not found on server", engine.ErrSourceUnavailable, calendar)
	}

	resp, err := c.http.DoREPORT(ctx, href, 1, eventQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: querying %q: %v", engine.ErrSourceUnavailable, calendar, err)
	}

	var events []event.Event
	for _, obj := range resp.Objects {
		if obj.CalendarData == "" {
			continue
		}
		cal, err := ical.NewDecoder(strings.NewReader(obj.CalendarData)).Decode()
		if err != nil {
			c.logger.Warn("skipping unparseable calendar object", "href", obj.Href, "error", err)
			continue
		}
		for _, ie := range cal.Events() {
			ev, err := decodeEvent(ie, calendar)
			if err != nil {
				c.logger.Warn("skipping malformed event", "href", obj.Href, "error", err)
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

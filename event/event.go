// Package event holds the normalized calendar event model shared by the
// filtering, transformation and reconciliation packages. It is independent of
// any wire encoding; the caldav package maps iCalendar objects to and from
// these types.
package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the participation status of an event, mirroring the iCalendar
// PARTSTAT values this tool cares about. StatusNone means no status was
// recorded on the event.
type Status string

const (
	StatusNone        Status = ""
	StatusAccepted    Status = "ACCEPTED"
	StatusDeclined    Status = "DECLINED"
	StatusTentative   Status = "TENTATIVE"
	StatusNeedsAction Status = "NEEDS-ACTION"
)

// ParseStatus converts a user-supplied status string (any case) to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusNone, StatusAccepted, StatusDeclined, StatusTentative, StatusNeedsAction:
		return st, nil
	default:
		return StatusNone, fmt.Errorf("unknown participation status %q", s)
	}
}

// ErrMalformed is returned when a source event cannot be normalized, for
// example when its start and end disagree on all-day tagging. Callers should
// skip the single event rather than abort the run.
var ErrMalformed = errors.New("malformed event")

// EventTime is either an all-day date or a timed instant carrying its source
// timezone identifier. The zero value is unset and invalid.
type EventTime struct {
	at     time.Time
	tzid   string
	allDay bool
	set    bool
}

// NewAllDay builds an all-day time from the date portion of t.
func NewAllDay(t time.Time) EventTime {
	y, m, d := t.Date()
	return EventTime{at: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), allDay: true, set: true}
}

// NewTimed builds a timed instant. tzid is the source timezone identifier
// and may be empty for UTC or floating times.
func NewTimed(at time.Time, tzid string) EventTime {
	return EventTime{at: at, tzid: tzid, set: true}
}

func (t EventTime) IsZero() bool   { return !t.set }
func (t EventTime) IsAllDay() bool { return t.allDay }

// Time returns the comparable instant: the actual instant for timed values,
// midnight UTC of the date for all-day values.
func (t EventTime) Time() time.Time { return t.at }

// TimezoneID returns the source timezone identifier. Empty for all-day and
// UTC/floating times.
func (t EventTime) TimezoneID() string { return t.tzid }

// Event is the canonical in-memory representation of a calendar event.
// Dedup identity is the UID alone, never the content.
type Event struct {
	// UID is the stable identifier assigned by the source calendar system.
	UID      string
	Summary  string
	Location string
	Start    EventTime
	End      EventTime
	Status   Status
	// RecurrenceRule is the raw RRULE value, empty for one-off events.
	RecurrenceRule string
	// Calendar is the name of the source calendar the event was read from.
	// It is not persisted to the destination.
	Calendar string
}

// Validate checks the structural invariants: a non-empty UID, both times
// present, and matching all-day tagging on start and end.
func (e Event) Validate() error {
	if e.UID == "" {
		return fmt.Errorf("%w: missing UID", ErrMalformed)
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Errorf("%w: event %q has no start or end", ErrMalformed, e.UID)
	}
	if e.Start.IsAllDay() != e.End.IsAllDay() {
		return fmt.Errorf("%w: event %q mixes all-day and timed values", ErrMalformed, e.UID)
	}
	return nil
}

// Copy is a previously written destination event. Copies are never edited in
// place; a changed source event is handled as delete-then-recreate.
type Copy struct {
	// CopyUID is the destination calendar's own identity for the copy,
	// randomly generated at create time.
	CopyUID string
	// OriginalUID links the copy back to the source event that produced it.
	// It is stamped at write time and never regenerated.
	OriginalUID string
	// Summary is the copy's display name as stored at the destination.
	Summary string
	// Status is the destination-observed participation status, which may
	// diverge from the source (e.g. the user declined the copy locally).
	Status Status
}

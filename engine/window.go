package engine

import (
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/illixion/CalendarTransformer/event"
)

// Window bounds which source events are considered during a run. An absent
// side is unbounded. Windows are computed once per run from the wall clock
// at run start and are immutable afterwards.
type Window struct {
	Earliest mo.Option[time.Time]
	Latest   mo.Option[time.Time]
}

// ComputeWindow derives the scan window from the run start time.
// futureScanDays bounds how far ahead events are mirrored; pastKeepDays
// bounds retention behind now, with zero meaning no past events at all.
func ComputeWindow(now time.Time, futureScanDays, pastKeepDays mo.Option[int]) Window {
	var w Window
	if days, ok := pastKeepDays.Get(); ok {
		w.Earliest = mo.Some(now.AddDate(0, 0, -days))
	}
	if days, ok := futureScanDays.Get(); ok {
		w.Latest = mo.Some(now.AddDate(0, 0, days))
	}
	return w
}

// Contains reports whether the instant falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if earliest, ok := w.Earliest.Get(); ok && t.Before(earliest) {
		return false
	}
	if latest, ok := w.Latest.Get(); ok && t.After(latest) {
		return false
	}
	return true
}

// ContainsEvent applies the window to an event's start. A recurring event
// counts as in-window when any occurrence of its rule falls inside it, so a
// long-running series is still mirrored even though its DTSTART aged out.
func (w Window) ContainsEvent(ev event.Event) bool {
	if ev.RecurrenceRule == "" {
		return w.Contains(ev.Start.Time())
	}
	r, err := rrule.StrToRRule(ev.RecurrenceRule)
	if err != nil {
		// Unparseable rule: fall back to plain start comparison.
		return w.Contains(ev.Start.Time())
	}
	r.DTStart(ev.Start.Time())

	from := ev.Start.Time()
	if earliest, ok := w.Earliest.Get(); ok && earliest.After(from) {
		from = earliest
	}
	next := r.After(from, true)
	if next.IsZero() {
		// The series ended before the window opened.
		return false
	}
	return w.Contains(next)
}

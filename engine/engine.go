// Package engine decides, for every event read from the source calendars,
// whether a copy of it should exist in the destination calendar, in what
// transformed shape, and which previously written copies must be removed.
// The planner itself performs no I/O; reading and writing calendars happens
// through the SourceReader and DestinationStore collaborators.
package engine

import (
	"strings"

	"github.com/illixion/CalendarTransformer/event"
	"github.com/illixion/CalendarTransformer/rules"
)

// deleteMarker flags a destination copy for manual removal when it prefixes
// the copy's summary.
const deleteMarker = "❌"

// Plan is the outcome of one reconciliation pass. Deletes must be executed
// before creates so that a recreated UID never has two live copies at once.
type Plan struct {
	// Create lists transformed events with no live destination copy,
	// in source order.
	Create []event.Event
	// Delete lists copy UIDs to remove, in destination listing order.
	Delete []string
}

// Empty reports whether the plan requires no work.
func (p Plan) Empty() bool { return len(p.Create) == 0 && len(p.Delete) == 0 }

// BuildPlan computes the operations needed to reconcile the destination
// calendar with the current source state. It is a pure function of its
// arguments: no I/O, no clock access, no state retained between calls.
//
// A destination copy survives only while an in-window source event matches a
// rule set and still maps to its original UID; deletion is always driven by
// that absence-of-match, never by inspecting copy content alone. Declined
// copies and copies carrying the manual delete marker are purged regardless
// of source state, and their UIDs are barred from recreation within the same
// plan so the user's decline is not immediately overridden. Source events
// that are themselves declined, or whose transformed summary carries the
// marker, are never written in the first place.
func BuildPlan(sources []event.Event, copies []event.Copy, sets []rules.Set, w Window) Plan {
	// First pass: decide which transformed events should exist. Rule sets
	// are evaluated in declaration order with first-match-wins; UID
	// collisions across source calendars collapse to the first event seen.
	wanted := make(map[string]event.Event, len(sources))
	order := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.Validate() != nil {
			continue
		}
		if !w.ContainsEvent(src) {
			continue
		}
		set, ok := rules.FirstMatch(sets, src)
		if !ok {
			continue
		}
		if _, dup := wanted[src.UID]; dup {
			continue
		}
		out := set.Transformations.Apply(src)
		// A declined event or one carrying the delete marker is never
		// written; an existing copy of it falls out through absence-of-match.
		if out.Status == event.StatusDeclined || strings.HasPrefix(out.Summary, deleteMarker) {
			continue
		}
		wanted[src.UID] = out
		order = append(order, src.UID)
	}

	var plan Plan
	live := make(map[string]bool)   // original UIDs with a copy surviving this run
	purged := make(map[string]bool) // original UIDs barred from recreation this run
	for _, c := range copies {
		switch {
		case c.Status == event.StatusDeclined || strings.HasPrefix(c.Summary, deleteMarker):
			plan.Delete = append(plan.Delete, c.CopyUID)
			purged[c.OriginalUID] = true
		default:
			if _, ok := wanted[c.OriginalUID]; !ok {
				// Source event deleted, aged out, or no longer matching.
				plan.Delete = append(plan.Delete, c.CopyUID)
				continue
			}
			if live[c.OriginalUID] {
				// Duplicate live copy for the same original; keep one.
				plan.Delete = append(plan.Delete, c.CopyUID)
				continue
			}
			live[c.OriginalUID] = true
		}
	}

	for _, uid := range order {
		if live[uid] || purged[uid] {
			continue
		}
		plan.Create = append(plan.Create, wanted[uid])
	}
	return plan
}

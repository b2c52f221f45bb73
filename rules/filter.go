// Package rules implements the filter and transformation rule sets applied to
// normalized events. A Set pairs a predicate group with a mutation group;
// sets are evaluated in declaration order and the first match wins.
package rules

import (
	"strings"

	"github.com/illixion/CalendarTransformer/event"
)

// Filters is a predicate group. Every configured predicate must hold for the
// group to match; absent predicates impose no constraint. All matching is
// pure and side-effect free.
type Filters struct {
	CalendarName         string
	NotCalendarName      string
	EventNameContains    []string
	EventNameNotContains []string
	LocationContains     []string
	LocationNotContains  []string
}

// Matches reports whether ev satisfies every configured predicate.
func (f Filters) Matches(ev event.Event) bool {
	if f.CalendarName != "" && ev.Calendar != f.CalendarName {
		return false
	}
	if f.NotCalendarName != "" && ev.Calendar == f.NotCalendarName {
		return false
	}
	if len(f.EventNameContains) > 0 && !containsAny(ev.Summary, f.EventNameContains) {
		return false
	}
	if containsAny(ev.Summary, f.EventNameNotContains) {
		return false
	}
	if len(f.LocationContains) > 0 && !containsAny(ev.Location, f.LocationContains) {
		return false
	}
	if containsAny(ev.Location, f.LocationNotContains) {
		return false
	}
	return true
}

// containsAny reports whether s contains at least one of the substrings.
// Matching is case-sensitive; an empty list matches nothing.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Set pairs a predicate group with the transformations applied on a match.
type Set struct {
	Filters         Filters
	Transformations Transformations
}

// FirstMatch returns the first set whose predicate group matches ev.
// Evaluation short-circuits at the first match.
func FirstMatch(sets []Set, ev event.Event) (Set, bool) {
	for _, s := range sets {
		if s.Filters.Matches(ev) {
			return s, true
		}
	}
	return Set{}, false
}

package rules

import (
	"github.com/samber/mo"

	"github.com/illixion/CalendarTransformer/event"
)

// Transformations is a mutation rule group. Rules run in a fixed order per
// event regardless of their order in configuration: name rules, then
// location rules, then participation status. Fields not addressed by any
// rule pass through unchanged.
type Transformations struct {
	SetEventName mo.Option[string]
	SetLocation  mo.Option[string]
	SetStatus    mo.Option[event.Status]

	StripName                   bool
	StripIfEventNameContains    []string
	StripIfEventNameNotContains []string

	StripLocation              bool
	StripIfLocationContains    []string
	StripIfLocationNotContains []string
}

// Apply returns a transformed copy of ev. The input is never mutated.
// Strip conditions are evaluated against the possibly just-set value.
func (t Transformations) Apply(ev event.Event) event.Event {
	out := ev
	if v, ok := t.SetEventName.Get(); ok {
		out.Summary = v
	}
	if shouldStrip(out.Summary, t.StripName, t.StripIfEventNameContains, t.StripIfEventNameNotContains) {
		out.Summary = ""
	}
	if v, ok := t.SetLocation.Get(); ok {
		out.Location = v
	}
	if shouldStrip(out.Location, t.StripLocation, t.StripIfLocationContains, t.StripIfLocationNotContains) {
		out.Location = ""
	}
	if v, ok := t.SetStatus.Get(); ok {
		out.Status = v
	}
	return out
}

// shouldStrip decides whether a field is cleared. Precedence: a configured
// not_contains list that matches suppresses stripping outright, even over an
// explicit strip flag; a not_contains list that fails to match forces it, as
// does a matched contains list; the plain strip flag is the fallback.
func shouldStrip(val string, strip bool, contains, notContains []string) bool {
	if len(notContains) > 0 {
		return !containsAny(val, notContains)
	}
	if containsAny(val, contains) {
		return true
	}
	return strip
}

package rules

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"

	"github.com/illixion/CalendarTransformer/event"
)

func TestTransformationsApply(t *testing.T) {
	base := event.Event{
		UID:      "abc",
		Summary:  "Team Meeting",
		Location: "Remote HQ",
		Calendar: "Work",
	}

	tests := []struct {
		name         string
		trans        Transformations
		wantSummary  string
		wantLocation string
		wantStatus   event.Status
	}{
		{
			name:         "no rules pass through",
			trans:        Transformations{},
			wantSummary:  "Team Meeting",
			wantLocation: "Remote HQ",
		},
		{
			name:         "set name and strip location on contains",
			trans:        Transformations{SetEventName: mo.Some("Busy"), StripLocation: true, StripIfLocationContains: []string{"HQ"}},
			wantSummary:  "Busy",
			wantLocation: "",
		},
		{
			name:         "strip name unconditionally",
			trans:        Transformations{StripName: true},
			wantSummary:  "",
			wantLocation: "Remote HQ",
		},
		{
			name:         "not-contains match suppresses strip_name",
			trans:        Transformations{StripName: true, StripIfEventNameNotContains: []string{"Meeting"}},
			wantSummary:  "Team Meeting",
			wantLocation: "Remote HQ",
		},
		{
			name:         "not-contains failure forces strip without strip_name",
			trans:        Transformations{StripIfEventNameNotContains: []string{"1:1"}},
			wantSummary:  "",
			wantLocation: "Remote HQ",
		},
		{
			name:         "contains match forces strip without strip_name",
			trans:        Transformations{StripIfEventNameContains: []string{"Meeting"}},
			wantSummary:  "",
			wantLocation: "Remote HQ",
		},
		{
			name:         "strip conditions see the just-set name",
			trans:        Transformations{SetEventName: mo.Some("Busy"), StripIfEventNameContains: []string{"Busy"}},
			wantSummary:  "",
			wantLocation: "Remote HQ",
		},
		{
			name:         "not-contains checks the just-set name",
			trans:        Transformations{SetEventName: mo.Some("Busy"), StripName: true, StripIfEventNameNotContains: []string{"Busy"}},
			wantSummary:  "Busy",
			wantLocation: "Remote HQ",
		},
		{
			name:         "set location literal",
			trans:        Transformations{SetLocation: mo.Some("Elsewhere")},
			wantSummary:  "Team Meeting",
			wantLocation: "Elsewhere",
		},
		{
			name:         "set empty name is distinct from absent",
			trans:        Transformations{SetEventName: mo.Some("")},
			wantSummary:  "",
			wantLocation: "Remote HQ",
		},
		{
			name:         "set status",
			trans:        Transformations{SetStatus: mo.Some(event.StatusAccepted)},
			wantSummary:  "Team Meeting",
			wantLocation: "Remote HQ",
			wantStatus:   event.StatusAccepted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.trans.Apply(base)
			assert.Equal(t, tt.wantSummary, got.Summary)
			assert.Equal(t, tt.wantLocation, got.Location)
			assert.Equal(t, tt.wantStatus, got.Status)
			// Untouched fields pass through.
			assert.Equal(t, base.UID, got.UID)
			assert.Equal(t, base.Calendar, got.Calendar)
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := event.Event{UID: "abc", Summary: "Team Meeting", Location: "Remote HQ"}
	trans := Transformations{SetEventName: mo.Some("Busy"), StripLocation: true}

	out := trans.Apply(in)
	assert.Equal(t, "Busy", out.Summary)
	assert.Equal(t, "Team Meeting", in.Summary)
	assert.Equal(t, "Remote HQ", in.Location)
}

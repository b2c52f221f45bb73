package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/illixion/CalendarTransformer/event"
)

func TestFiltersMatches(t *testing.T) {
	ev := event.Event{
		UID:      "abc",
		Summary:  "Team Meeting",
		Location: "Cafeteria",
		Calendar: "Work",
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{
			name:    "empty group matches everything",
			filters: Filters{},
			want:    true,
		},
		{
			name:    "calendar name match",
			filters: Filters{CalendarName: "Work"},
			want:    true,
		},
		{
			name:    "calendar name mismatch",
			filters: Filters{CalendarName: "Personal"},
			want:    false,
		},
		{
			name:    "negated calendar name",
			filters: Filters{NotCalendarName: "Work"},
			want:    false,
		},
		{
			name:    "name contains one of",
			filters: Filters{EventNameContains: []string{"Standup", "Meeting"}},
			want:    true,
		},
		{
			name:    "name contains none",
			filters: Filters{EventNameContains: []string{"Standup", "1:1"}},
			want:    false,
		},
		{
			name:    "name contains is case-sensitive",
			filters: Filters{EventNameContains: []string{"meeting"}},
			want:    false,
		},
		{
			name:    "name not-contains rejects on match",
			filters: Filters{EventNameNotContains: []string{"Meeting"}},
			want:    false,
		},
		{
			name:    "location not-contains rejects cafeteria event",
			filters: Filters{CalendarName: "Work", LocationNotContains: []string{"Cafeteria"}},
			want:    false,
		},
		{
			name:    "location contains",
			filters: Filters{LocationContains: []string{"Cafe"}},
			want:    true,
		},
		{
			name: "all predicates must hold",
			filters: Filters{
				CalendarName:      "Work",
				EventNameContains: []string{"Meeting"},
				LocationContains:  []string{"Room 4"},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Matches(ev))
		})
	}
}

func TestFirstMatchPrecedence(t *testing.T) {
	ev := event.Event{UID: "abc", Summary: "Team Meeting", Calendar: "Work"}

	first := Set{Filters: Filters{CalendarName: "Work"}}
	second := Set{Filters: Filters{EventNameContains: []string{"Meeting"}}}

	// Both sets match; the earlier declaration wins.
	got, ok := FirstMatch([]Set{first, second}, ev)
	assert.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = FirstMatch([]Set{{Filters: Filters{CalendarName: "Personal"}}}, ev)
	assert.False(t, ok)

	_, ok = FirstMatch(nil, ev)
	assert.False(t, ok)
}

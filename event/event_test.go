package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"accepted", StatusAccepted, false},
		{"DECLINED", StatusDeclined, false},
		{"Tentative", StatusTentative, false},
		{"needs-action", StatusNeedsAction, false},
		{" declined ", StatusDeclined, false},
		{"", StatusNone, false},
		{"maybe", StatusNone, true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestEventTime(t *testing.T) {
	var zero EventTime
	assert.True(t, zero.IsZero())

	allDay := NewAllDay(time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local))
	assert.True(t, allDay.IsAllDay())
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), allDay.Time())
	assert.Empty(t, allDay.TimezoneID())

	loc, err := time.LoadLocation("Europe/Riga")
	require.NoError(t, err)
	timed := NewTimed(time.Date(2024, 3, 15, 14, 30, 0, 0, loc), "Europe/Riga")
	assert.False(t, timed.IsAllDay())
	assert.Equal(t, "Europe/Riga", timed.TimezoneID())
	assert.Equal(t, 14, timed.Time().Hour())
}

func TestEventValidate(t *testing.T) {
	timed := NewTimed(time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), "UTC")
	allDay := NewAllDay(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name    string
		ev      Event
		wantErr bool
	}{
		{
			name: "valid timed",
			ev:   Event{UID: "e1", Start: timed, End: timed},
		},
		{
			name: "valid all-day",
			ev:   Event{UID: "e2", Start: allDay, End: allDay},
		},
		{
			name:    "missing UID",
			ev:      Event{Start: timed, End: timed},
			wantErr: true,
		},
		{
			name:    "missing times",
			ev:      Event{UID: "e3"},
			wantErr: true,
		},
		{
			name:    "mixed all-day and timed",
			ev:      Event{UID: "e4", Start: allDay, End: timed},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			assert.NoError(t, err)
		})
	}
}

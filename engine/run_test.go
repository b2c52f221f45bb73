package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illixion/CalendarTransformer/event"
)

type fakeReader struct {
	calendars map[string][]event.Event
	err       error
}

func (r *fakeReader) ListEvents(_ context.Context, calendar string) ([]event.Event, error) {
	if r.err != nil {
		return nil, r.err
	}
	evs, ok := r.calendars[calendar]
	if !ok {
		return nil, ErrSourceUnavailable
	}
	return evs, nil
}

type fakeStore struct {
	copies  []event.Copy
	ops     []string // interleaved operation log
	listErr error
	// vanished copy UIDs answer Delete with ErrCopyNotFound.
	vanished map[string]bool
}

func (s *fakeStore) ListCopies(context.Context) ([]event.Copy, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.copies, nil
}

func (s *fakeStore) Create(_ context.Context, ev event.Event) (string, error) {
	s.ops = append(s.ops, "create:"+ev.UID)
	return "copy-" + ev.UID, nil
}

func (s *fakeStore) Delete(_ context.Context, copyUID string) error {
	if s.vanished[copyUID] {
		return ErrCopyNotFound
	}
	s.ops = append(s.ops, "delete:"+copyUID)
	return nil
}

func TestRunExecutesDeletesBeforeCreates(t *testing.T) {
	reader := &fakeReader{calendars: map[string][]event.Event{
		"Work": {sourceEvent("a", "One", "", "Work")},
	}}
	store := &fakeStore{copies: []event.Copy{
		{CopyUID: "stale", OriginalUID: "gone", Summary: "Old"},
	}}
	opts := Options{
		Sets:            matchAll(),
		SourceCalendars: []string{"Work"},
		Now:             testNow,
	}

	stats, err := Run(context.Background(), reader, store, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete:stale", "create:a"}, store.ops)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 1, stats.SourceEvents)
	assert.Equal(t, 1, stats.Copies)
}

func TestRunSkipsUnavailableSourceCalendar(t *testing.T) {
	reader := &fakeReader{calendars: map[string][]event.Event{
		"Work": {sourceEvent("a", "One", "", "Work")},
	}}
	store := &fakeStore{}
	opts := Options{
		Sets:            matchAll(),
		SourceCalendars: []string{"Missing", "Work"},
		Now:             testNow,
	}

	stats, err := Run(context.Background(), reader, store, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SourceEvents)
	assert.Equal(t, 1, stats.Created)
}

func TestRunToleratesVanishedCopies(t *testing.T) {
	reader := &fakeReader{calendars: map[string][]event.Event{
		"Work": {sourceEvent("a", "One", "", "Work")},
	}}
	store := &fakeStore{
		copies: []event.Copy{
			{CopyUID: "gone", OriginalUID: "x"},
			{CopyUID: "stale", OriginalUID: "y"},
		},
		vanished: map[string]bool{"gone": true},
	}
	opts := Options{
		Sets:            matchAll(),
		SourceCalendars: []string{"Work"},
		Now:             testNow,
	}

	stats, err := Run(context.Background(), reader, store, opts, nil)
	require.NoError(t, err)
	// The vanished copy is skipped, not counted, and the run carries on.
	assert.Equal(t, []string{"delete:stale", "create:a"}, store.ops)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 1, stats.Created)
}

func TestRunAbortsOnDestinationFailure(t *testing.T) {
	reader := &fakeReader{calendars: map[string][]event.Event{}}
	store := &fakeStore{listErr: ErrDestinationUnavailable}
	opts := Options{Sets: matchAll(), Now: testNow}

	_, err := Run(context.Background(), reader, store, opts, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDestinationUnavailable)
	assert.Empty(t, store.ops)
}

func TestRunDryRunMakesNoChanges(t *testing.T) {
	reader := &fakeReader{calendars: map[string][]event.Event{
		"Work": {sourceEvent("a", "One", "", "Work")},
	}}
	store := &fakeStore{copies: []event.Copy{
		{CopyUID: "stale", OriginalUID: "gone"},
	}}
	opts := Options{
		Sets:            matchAll(),
		SourceCalendars: []string{"Work"},
		Now:             testNow,
		DryRun:          true,
	}

	stats, err := Run(context.Background(), reader, store, opts, nil)
	require.NoError(t, err)
	assert.Empty(t, store.ops)
	assert.Zero(t, stats.Created)
	assert.Zero(t, stats.Deleted)
}

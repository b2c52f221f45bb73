package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/illixion/CalendarTransformer/event"
	"github.com/illixion/CalendarTransformer/rules"
)

// Collaborator failure sentinels. The engine never retries; it surfaces the
// failure to the caller, who may skip the affected calendar or abort.
var (
	// ErrSourceUnavailable means a source calendar could not be reached or
	// does not exist.
	ErrSourceUnavailable = errors.New("source calendar unavailable")
	// ErrDestinationUnavailable means the destination calendar could not be
	// reached or does not exist.
	ErrDestinationUnavailable = errors.New("destination calendar unavailable")
	// ErrCopyNotFound means a destination copy vanished between listing and
	// deletion. Safe to ignore: the goal state is already reached.
	ErrCopyNotFound = errors.New("destination copy not found")
)

// SourceReader lists normalized events from a named source calendar.
type SourceReader interface {
	ListEvents(ctx context.Context, calendar string) ([]event.Event, error)
}

// DestinationStore reads and mutates the destination calendar. Create stamps
// the event's original UID onto the copy's metadata and returns the new
// randomly generated copy UID.
type DestinationStore interface {
	ListCopies(ctx context.Context) ([]event.Copy, error)
	Create(ctx context.Context, ev event.Event) (copyUID string, err error)
	Delete(ctx context.Context, copyUID string) error
}

// Options configures one reconciliation run. It is assembled from the loaded
// configuration and passed by value; the engine keeps no ambient state.
type Options struct {
	Sets            []rules.Set
	SourceCalendars []string
	FutureScanDays  mo.Option[int]
	PastKeepDays    mo.Option[int]
	// Now fixes the run's reference time; zero means the wall clock.
	Now time.Time
	// DryRun computes and logs the plan without executing it.
	DryRun bool
}

// Stats summarizes one run.
type Stats struct {
	SourceEvents int
	Copies       int
	Created      int
	Deleted      int
}

// Run performs one full reconciliation pass: read all source and destination
// state up front, compute the plan, then execute deletes before creates.
// Unavailable source calendars are skipped with a warning; a failing
// destination aborts the run. All operations are idempotent, so a rerun
// after a mid-run failure is safe.
func Run(ctx context.Context, reader SourceReader, store DestinationStore, opts Options, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats Stats

	var sources []event.Event
	for _, name := range opts.SourceCalendars {
		evs, err := reader.ListEvents(ctx, name)
		if err != nil {
			if errors.Is(err, ErrSourceUnavailable) {
				logger.Warn("skipping unavailable source calendar", "calendar", name, "error", err)
				continue
			}
			return stats, fmt.Errorf("listing events in %q: %w", name, err)
		}
		logger.Debug("read source calendar", "calendar", name, "events", len(evs))
		sources = append(sources, evs...)
	}
	stats.SourceEvents = len(sources)

	copies, err := store.ListCopies(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing destination copies: %w", err)
	}
	stats.Copies = len(copies)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := ComputeWindow(now, opts.FutureScanDays, opts.PastKeepDays)
	plan := BuildPlan(sources, copies, opts.Sets, window)
	logger.Info("plan computed",
		"source_events", len(sources),
		"destination_copies", len(copies),
		"to_create", len(plan.Create),
		"to_delete", len(plan.Delete))

	if opts.DryRun {
		for _, uid := range plan.Delete {
			logger.Info("dry-run: would delete copy", "copy_uid", uid)
		}
		for _, ev := range plan.Create {
			logger.Info("dry-run: would create copy", "original_uid", ev.UID, "summary", ev.Summary)
		}
		return stats, nil
	}

	for _, uid := range plan.Delete {
		if err := store.Delete(ctx, uid); err != nil {
			if errors.Is(err, ErrCopyNotFound) {
				logger.Warn("copy already gone", "copy_uid", uid)
				continue
			}
			return stats, fmt.Errorf("deleting copy %q: %w", uid, err)
		}
		stats.Deleted++
	}
	for _, ev := range plan.Create {
		copyUID, err := store.Create(ctx, ev)
		if err != nil {
			return stats, fmt.Errorf("creating copy of %q: %w", ev.UID, err)
		}
		logger.Debug("created copy", "original_uid", ev.UID, "copy_uid", copyUID)
		stats.Created++
	}
	return stats, nil
}

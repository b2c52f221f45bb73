// Package config loads and validates the TOML configuration. Configuration
// is read once at startup and passed by value into the engine; nothing here
// keeps process-wide state.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/samber/mo"

	"github.com/illixion/CalendarTransformer/engine"
	"github.com/illixion/CalendarTransformer/event"
	"github.com/illixion/CalendarTransformer/rules"
)

// ErrInvalid is wrapped by every configuration validation failure. Such
// failures are fatal and abort before any I/O.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full TOML configuration.
type Config struct {
	// URL is the CalDAV server base URL, e.g. "https://caldav.fastmail.com/dav/".
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`

	// DestCalendar is the display name of the calendar copies are written to.
	DestCalendar string `toml:"dest_calendar"`
	// SourceCalendars optionally names the calendars to read. When empty,
	// source calendars are derived from the filter sets' calendar_name keys.
	SourceCalendars []string `toml:"source_calendars"`

	// FutureScanDays bounds how far ahead events are mirrored; absent means
	// unbounded future.
	FutureScanDays *int `toml:"future_scan_days"`
	// PastKeepDays bounds retention behind the run time; absent means
	// unbounded past, zero keeps no past events at all.
	PastKeepDays *int `toml:"past_keep_days"`

	// FilterSets are evaluated in declaration order; the first whose filters
	// match an event is applied, and an event matching none is excluded.
	FilterSets []FilterSet `toml:"filter_sets"`
}

// FilterSet mirrors one [[filter_sets]] table.
type FilterSet struct {
	Filters         Filters         `toml:"filters"`
	Transformations Transformations `toml:"transformations"`
}

// Filters mirrors the predicate keys of a filter_sets.filters table.
type Filters struct {
	CalendarName         string   `toml:"calendar_name"`
	NotCalendarName      string   `toml:"not_calendar_name"`
	EventNameContains    []string `toml:"event_name_contains"`
	EventNameNotContains []string `toml:"event_name_not_contains"`
	LocationContains     []string `toml:"location_contains"`
	LocationNotContains  []string `toml:"location_not_contains"`
}

// Transformations mirrors the mutation keys of a filter_sets.transformations
// table. Pointer fields distinguish "absent" from an explicit empty value.
type Transformations struct {
	SetEventName  *string `toml:"set_event_name"`
	SetLocation   *string `toml:"set_location"`
	SetRSVPStatus *string `toml:"set_rsvp_status"`

	StripName                   bool     `toml:"strip_name"`
	StripIfEventNameContains    []string `toml:"strip_if_event_name_contains"`
	StripIfEventNameNotContains []string `toml:"strip_if_event_name_not_contains"`

	StripLocation              bool     `toml:"strip_location"`
	StripIfLocationContains    []string `toml:"strip_if_location_contains"`
	StripIfLocationNotContains []string `toml:"strip_if_location_not_contains"`
}

// Load reads and validates a TOML configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration surface the engine depends on.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalid)
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalid)
	}
	if c.DestCalendar == "" {
		return fmt.Errorf("%w: dest_calendar is required", ErrInvalid)
	}
	if c.FutureScanDays != nil && *c.FutureScanDays <= 0 {
		return fmt.Errorf("%w: future_scan_days must be positive", ErrInvalid)
	}
	if c.PastKeepDays != nil && *c.PastKeepDays < 0 {
		return fmt.Errorf("%w: past_keep_days must not be negative", ErrInvalid)
	}
	if len(c.FilterSets) == 0 {
		return fmt.Errorf("%w: at least one [[filter_sets]] entry is required", ErrInvalid)
	}
	for i, fs := range c.FilterSets {
		if s := fs.Transformations.SetRSVPStatus; s != nil {
			if _, err := event.ParseStatus(*s); err != nil {
				return fmt.Errorf("%w: filter_sets[%d]: %v", ErrInvalid, i, err)
			}
		}
	}
	return nil
}

// Sets converts the configured filter sets into rule sets, preserving
// declaration order.
func (c Config) Sets() []rules.Set {
	sets := make([]rules.Set, 0, len(c.FilterSets))
	for _, fs := range c.FilterSets {
		t := rules.Transformations{
			StripName:                   fs.Transformations.StripName,
			StripIfEventNameContains:    fs.Transformations.StripIfEventNameContains,
			StripIfEventNameNotContains: fs.Transformations.StripIfEventNameNotContains,
			StripLocation:               fs.Transformations.StripLocation,
			StripIfLocationContains:     fs.Transformations.StripIfLocationContains,
			StripIfLocationNotContains:  fs.Transformations.StripIfLocationNotContains,
		}
		if v := fs.Transformations.SetEventName; v != nil {
			t.SetEventName = mo.Some(*v)
		}
		if v := fs.Transformations.SetLocation; v != nil {
			t.SetLocation = mo.Some(*v)
		}
		if v := fs.Transformations.SetRSVPStatus; v != nil {
			// Validated in Validate; unknown values never reach here.
			st, _ := event.ParseStatus(*v)
			t.SetStatus = mo.Some(st)
		}
		sets = append(sets, rules.Set{
			Filters:         rules.Filters(fs.Filters),
			Transformations: t,
		})
	}
	return sets
}

// Sources returns the calendars to read. When source_calendars is not
// configured they are derived from each filter set's calendar_name key,
// skipping the destination calendar and preserving first-appearance order.
func (c Config) Sources() []string {
	if len(c.SourceCalendars) > 0 {
		return c.SourceCalendars
	}
	seen := make(map[string]bool)
	var out []string
	for _, fs := range c.FilterSets {
		name := fs.Filters.CalendarName
		if name == "" || name == c.DestCalendar || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Options assembles the engine options for one run.
func (c Config) Options(dryRun bool) engine.Options {
	opts := engine.Options{
		Sets:            c.Sets(),
		SourceCalendars: c.Sources(),
		DryRun:          dryRun,
	}
	if c.FutureScanDays != nil {
		opts.FutureScanDays = mo.Some(*c.FutureScanDays)
	}
	if c.PastKeepDays != nil {
		opts.PastKeepDays = mo.Some(*c.PastKeepDays)
	}
	return opts
}

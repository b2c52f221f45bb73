package caldav

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/illixion/CalendarTransformer/event"
)

// propOriginalUID carries the source event's UID on every copy we create.
// It is the only cross-run memory the tool has.
const propOriginalUID = "X-ORIGINAL-UID"

// attendeePlaceholder is the calendar address written on copies that carry a
// participation status. Destination clients overwrite it when the user
// responds to the copy.
const attendeePlaceholder = "mailto:calendar-transformer@localhost"

// calendarQuery is the REPORT body listing all VEVENTs in a collection.
type calendarQuery struct {
	XMLName xml.Name    `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    queryProp   `xml:"DAV: prop"`
	Filter  queryFilter `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type queryProp struct {
	GetETag      *struct{} `xml:"DAV: getetag"`
	CalendarData *struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

type queryFilter struct {
	CompFilter compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type compFilter struct {
	Name       string      `xml:"name,attr"`
	CompFilter *compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
}

func eventQuery() *calendarQuery {
	return &calendarQuery{
		Prop: queryProp{
			GetETag:      &struct{}{},
			CalendarData: &struct{}{},
		},
		Filter: queryFilter{
			CompFilter: compFilter{
				Name:       "VCALENDAR",
				CompFilter: &compFilter{Name: "VEVENT"},
			},
		},
	}
}

// decodeEvent normalizes an iCalendar VEVENT read from the named calendar.
// Inconsistent or incomplete events return an error wrapping
// event.ErrMalformed so callers can skip them.
func decodeEvent(ie ical.Event, calendar string) (event.Event, error) {
	uid := textProp(ie, ical.PropUID)

	start, err := decodeTime(ie.Props.Get(ical.PropDateTimeStart))
	if err != nil {
		return event.Event{}, fmt.Errorf("%w: event %q: DTSTART: %v", event.ErrMalformed, uid, err)
	}
	end, err := decodeTime(ie.Props.Get(ical.PropDateTimeEnd))
	if err != nil {
		// DTEND is optional; default to one hour (one day for all-day).
		if start.IsAllDay() {
			end = event.NewAllDay(start.Time().AddDate(0, 0, 1))
		} else {
			end = event.NewTimed(start.Time().Add(time.Hour), start.TimezoneID())
		}
	}

	ev := event.Event{
		UID:            uid,
		Summary:        textProp(ie, ical.PropSummary),
		Location:       textProp(ie, ical.PropLocation),
		Start:          start,
		End:            end,
		Status:         decodeStatus(ie),
		RecurrenceRule: textProp(ie, ical.PropRecurrenceRule),
		Calendar:       calendar,
	}
	if err := ev.Validate(); err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

// decodeCopy reads back a destination copy. Returns ok=false for objects
// this tool did not create (no original UID stamp); those are left alone.
func decodeCopy(ie ical.Event) (event.Copy, bool) {
	original := textProp(ie, propOriginalUID)
	if original == "" {
		return event.Copy{}, false
	}
	return event.Copy{
		CopyUID:     textProp(ie, ical.PropUID),
		OriginalUID: original,
		Summary:     textProp(ie, ical.PropSummary),
		Status:      decodeStatus(ie),
	}, true
}

// decodeStatus extracts the PARTSTAT of the first attendee carrying one.
// Values outside the modeled set count as no status.
func decodeStatus(ie ical.Event) event.Status {
	for _, att := range ie.Props.Values(ical.PropAttendee) {
		if v := att.Params.Get(ical.ParamParticipationStatus); v != "" {
			if st, err := event.ParseStatus(v); err == nil {
				return st
			}
		}
	}
	return event.StatusNone
}

func textProp(ie ical.Event, name string) string {
	if p := ie.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}

// decodeTime parses a DTSTART/DTEND property into the tagged time model.
// Date-only values become all-day; timed values keep their TZID location.
// Floating times without a TZID are treated as UTC.
func decodeTime(p *ical.Prop) (event.EventTime, error) {
	if p == nil {
		return event.EventTime{}, fmt.Errorf("missing property")
	}
	value := p.Value

	if p.Params.Get(ical.ParamValue) == "DATE" || len(value) == len("20060102") {
		d, err := time.Parse("20060102", value)
		if err != nil {
			return event.EventTime{}, fmt.Errorf("invalid date %q", value)
		}
		return event.NewAllDay(d), nil
	}

	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return event.NewTimed(t, "UTC"), nil
	}

	tzid := p.Params.Get(ical.ParamTimezoneID)
	loc := time.UTC
	if tzid != "" {
		if l, err := time.LoadLocation(tzid); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation("20060102T150405", value, loc)
	if err != nil {
		return event.EventTime{}, fmt.Errorf("invalid date-time %q", value)
	}
	return event.NewTimed(t, tzid), nil
}

// encodeEvent serializes a transformed event as the iCalendar payload of a
// new destination copy identified by copyUID. The source UID is stamped as
// X-ORIGINAL-UID for future dedup lookups; the source calendar name is not
// persisted.
func encodeEvent(ev event.Event, copyUID string) ([]byte, error) {
	e := ical.NewEvent()
	e.Props.SetText(ical.PropUID, copyUID)
	e.Props.SetText(propOriginalUID, ev.UID)
	e.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	e.Props.SetText(ical.PropSummary, ev.Summary)
	if ev.Location != "" {
		e.Props.SetText(ical.PropLocation, ev.Location)
	}
	encodeTimeProp(e, ical.PropDateTimeStart, ev.Start)
	encodeTimeProp(e, ical.PropDateTimeEnd, ev.End)
	if ev.RecurrenceRule != "" {
		e.Props.SetText(ical.PropRecurrenceRule, ev.RecurrenceRule)
	}
	if ev.Status != event.StatusNone {
		att := ical.NewProp(ical.PropAttendee)
		att.Params.Set(ical.ParamParticipationStatus, string(ev.Status))
		att.Value = attendeePlaceholder
		e.Props.Set(att)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//illixion//CalendarTransformer//EN")
	cal.Children = append(cal.Children, e.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeTimeProp(e *ical.Event, name string, t event.EventTime) {
	p := ical.NewProp(name)
	switch {
	case t.IsAllDay():
		p.Params.Set(ical.ParamValue, "DATE")
		p.Value = t.Time().Format("20060102")
	case t.TimezoneID() != "" && t.TimezoneID() != "UTC":
		p.Params.Set(ical.ParamTimezoneID, t.TimezoneID())
		p.Value = t.Time().Format("20060102T150405")
	default:
		p.Value = t.Time().UTC().Format("20060102T150405Z")
	}
	e.Props.Set(p)
}

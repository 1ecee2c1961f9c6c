// Package timeslot contains the pure time arithmetic behind slot
// scheduling, from projecting slot definitions onto concrete instants to
// the lifecycle classifications the monitors poll on.
//
// All functions take the reference instant explicitly so callers can inject
// a test clock; none of them touch the store. Date and start-time strings
// are assumed well formed here; ParseDate and ParseClock are the edge
// validators that enforce that precondition.
package timeslot

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/shower-tracker/internal/model"
)

// DateLayout is the calendar-day form used by Slot.Date.
const DateLayout = "2006-01-02"

// ClockLayout is the wall-clock form used by Slot.StartTime.
const ClockLayout = "15:04"

// ErrMalformedDate indicates a slot date that does not parse as 2006-01-02.
var ErrMalformedDate = errors.New("timeslot: malformed date")

// ErrMalformedClock indicates a start time that does not parse as 15:04.
var ErrMalformedClock = errors.New("timeslot: malformed start time")

// ParseDate validates a calendar-day string at the API edge.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}
	return t, nil
}

// ParseClock validates a wall-clock string at the API edge and returns its
// hour and minute components.
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedClock, value)
	}
	return t.Hour(), t.Minute(), nil
}

// DateOf formats an instant as the calendar day it falls on, in the
// instant's own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// EffectiveStart resolves a slot to the absolute instant it starts at.
// Recurring slots combine now's calendar date with the slot's start time,
// which is the single abstraction letting everything downstream treat
// recurring and dated slots uniformly. Dated slots use their own date.
func EffectiveStart(slot model.Slot, now time.Time) time.Time {
	date := slot.Date
	if slot.Recurring {
		date = DateOf(now)
	}
	return combine(date, slot.StartTime, now.Location())
}

// EffectiveEnd is EffectiveStart plus the slot's duration.
func EffectiveEnd(slot model.Slot, now time.Time) time.Time {
	return EffectiveStart(slot, now).Add(time.Duration(slot.DurationMinutes) * time.Minute)
}

// IsForToday reports whether the slot applies to now's calendar day: either
// it is recurring (manifests daily) or it is dated today.
func IsForToday(slot model.Slot, now time.Time) bool {
	return slot.Recurring || slot.Date == DateOf(now)
}

// MinutesOfDay returns the slot's start expressed as minutes since
// midnight, the unit claim validation compares intervals in.
func MinutesOfDay(slot model.Slot) int {
	h, m, _ := clockParts(slot.StartTime)
	return h*60 + m
}

func combine(date, clock string, loc *time.Location) time.Time {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		// Precondition violation; keep the function total by pinning the
		// zero day rather than panicking mid-poll.
		day = time.Time{}
	}
	h, m, _ := clockParts(clock)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
}

func clockParts(clock string) (hour, minute int, ok bool) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

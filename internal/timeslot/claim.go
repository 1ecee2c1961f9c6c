package timeslot

import (
	"time"

	"github.com/example/shower-tracker/internal/model"
)

// RejectReason classifies why a claim was refused.
type RejectReason string

const (
	// RejectOverlap means the candidate's window intersects a comparable
	// existing slot.
	RejectOverlap RejectReason = "overlap"
	// RejectPastTime means the candidate is dated today but starts before
	// the current time of day.
	RejectPastTime RejectReason = "past_time"
)

// Decision is the outcome of ValidateClaim. ConflictID names the first
// overlapping slot when the reason is RejectOverlap.
type Decision struct {
	OK         bool
	Reason     RejectReason
	ConflictID string
}

// Accept is the decision for a valid claim.
func Accept() Decision { return Decision{OK: true} }

// ValidateClaim decides whether a candidate reservation may be persisted
// alongside the existing slots. It has no side effects; the caller persists
// the slot only on acceptance.
//
// Two slots are compared for overlap when both are recurring, both share
// the same concrete date, or one is recurring while the other is dated
// today (a recurring slot manifests daily, and this design always
// evaluates it against the current day). Intervals are half-open in
// minutes of day, so touching endpoints do not conflict.
func ValidateClaim(candidate model.Slot, existing []model.Slot, now time.Time) Decision {
	newStart := MinutesOfDay(candidate)
	newEnd := newStart + candidate.DurationMinutes
	today := DateOf(now)

	for _, slot := range existing {
		if !comparableDays(candidate, slot, today) {
			continue
		}
		start := MinutesOfDay(slot)
		end := start + slot.DurationMinutes
		if newStart < end && newEnd > start {
			return Decision{Reason: RejectOverlap, ConflictID: slot.ID}
		}
	}

	// Recurring claims always project onto a future-or-current instant each
	// day, so only dated claims can target the past.
	if !candidate.Recurring && candidate.Date == today {
		nowMinutes := now.Hour()*60 + now.Minute()
		if newStart < nowMinutes {
			return Decision{Reason: RejectPastTime}
		}
	}

	return Accept()
}

func comparableDays(a, b model.Slot, today string) bool {
	switch {
	case a.Recurring && b.Recurring:
		return true
	case !a.Recurring && !b.Recurring:
		return a.Date == b.Date
	case a.Recurring:
		return b.Date == today
	default:
		return a.Date == today
	}
}

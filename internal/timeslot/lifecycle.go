package timeslot

import (
	"sort"
	"time"

	"github.com/example/shower-tracker/internal/model"
)

// ActiveSlotMargin pads both sides of a slot's window when deciding whether
// a running shower belongs to it.
const ActiveSlotMargin = 10 * time.Minute

// AutoLogGrace bounds how long after a slot's effective end it remains
// eligible for auto-logging.
const AutoLogGrace = 5 * time.Minute

// ActiveSlot finds the slot a running shower is fulfilling: owned by the
// occupant, applicable today, with the occupancy starting inside the
// margin-padded window and now not yet past the padded end.
//
// When several slots qualify the earliest effective start wins, with ID as
// the final tie-break, so every caller resolves the same slot.
func ActiveSlot(slots []model.Slot, user string, startedAt, now time.Time) (model.Slot, bool) {
	matches := make([]model.Slot, 0, 1)
	for _, slot := range slots {
		if slot.User != user || !IsForToday(slot, now) {
			continue
		}
		start := EffectiveStart(slot, now)
		end := EffectiveEnd(slot, now)
		if startedAt.Before(start.Add(-ActiveSlotMargin)) || startedAt.After(end.Add(ActiveSlotMargin)) {
			continue
		}
		if now.After(end.Add(ActiveSlotMargin)) {
			continue
		}
		matches = append(matches, slot)
	}
	if len(matches) == 0 {
		return model.Slot{}, false
	}
	sort.Slice(matches, func(i, j int) bool {
		si, sj := EffectiveStart(matches[i], now), EffectiveStart(matches[j], now)
		if si.Equal(sj) {
			return matches[i].ID < matches[j].ID
		}
		return si.Before(sj)
	})
	return matches[0], true
}

// IsPast reports whether a slot is done: explicitly completed, dated before
// today, or with its window fully elapsed. Recurring slots reset daily and
// are never past on date alone; once marked completed they stay completed,
// a deliberate simplification carried from the product.
func IsPast(slot model.Slot, now time.Time) bool {
	if slot.Completed {
		return true
	}
	if slot.Recurring {
		return false
	}
	today := DateOf(now)
	if slot.Date < today {
		return true
	}
	if slot.Date > today {
		return false
	}
	return !EffectiveEnd(slot, now).After(now)
}

// AutoLogDue reports whether a slot's window has just elapsed: its
// effective end is in the past but within the grace window. Completed slots
// are never due. Callers are responsible for once-per-cycle dedupe.
func AutoLogDue(slot model.Slot, now time.Time) bool {
	if slot.Completed {
		return false
	}
	end := EffectiveEnd(slot, now)
	return end.Before(now) && now.Sub(end) <= AutoLogGrace
}

package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/shower-tracker/internal/model"
)

func TestValidateClaimRejectsOverlapSameDay(t *testing.T) {
	now := date(t, "2025-03-10 06:00")
	existing := []model.Slot{
		{ID: "a", User: "Mom", Date: "2025-03-10", StartTime: "07:00", DurationMinutes: 15},
	}
	candidate := model.Slot{User: "Dad", Date: "2025-03-10", StartTime: "07:10", DurationMinutes: 15}

	decision := ValidateClaim(candidate, existing, now)
	assert.False(t, decision.OK)
	assert.Equal(t, RejectOverlap, decision.Reason)
	assert.Equal(t, "a", decision.ConflictID)
}

func TestValidateClaimHalfOpenIntervals(t *testing.T) {
	now := date(t, "2025-03-10 06:00")
	existing := []model.Slot{
		{ID: "a", User: "Mom", Date: "2025-03-10", StartTime: "07:00", DurationMinutes: 15},
	}

	// Touching endpoints do not overlap.
	after := model.Slot{User: "Dad", Date: "2025-03-10", StartTime: "07:15", DurationMinutes: 15}
	assert.True(t, ValidateClaim(after, existing, now).OK)

	before := model.Slot{User: "Dad", Date: "2025-03-10", StartTime: "06:45", DurationMinutes: 15}
	assert.True(t, ValidateClaim(before, existing, now).OK)

	// One shared minute does.
	grazing := model.Slot{User: "Dad", Date: "2025-03-10", StartTime: "07:14", DurationMinutes: 15}
	assert.Equal(t, RejectOverlap, ValidateClaim(grazing, existing, now).Reason)
}

func TestValidateClaimComparability(t *testing.T) {
	now := date(t, "2025-03-10 06:00")

	cases := []struct {
		name      string
		candidate model.Slot
		existing  model.Slot
		wantOK    bool
	}{
		{
			name:      "different concrete dates never conflict",
			candidate: model.Slot{Date: "2025-03-11", StartTime: "07:00", DurationMinutes: 30},
			existing:  model.Slot{Date: "2025-03-10", StartTime: "07:00", DurationMinutes: 30},
			wantOK:    true,
		},
		{
			name:      "both recurring always compared",
			candidate: model.Slot{StartTime: "07:00", DurationMinutes: 30, Recurring: true},
			existing:  model.Slot{StartTime: "07:15", DurationMinutes: 30, Recurring: true},
			wantOK:    false,
		},
		{
			name:      "recurring candidate vs dated-today slot",
			candidate: model.Slot{StartTime: "07:00", DurationMinutes: 30, Recurring: true},
			existing:  model.Slot{Date: "2025-03-10", StartTime: "07:15", DurationMinutes: 30},
			wantOK:    false,
		},
		{
			name:      "recurring candidate vs dated-tomorrow slot",
			candidate: model.Slot{StartTime: "07:00", DurationMinutes: 30, Recurring: true},
			existing:  model.Slot{Date: "2025-03-11", StartTime: "07:15", DurationMinutes: 30},
			wantOK:    true,
		},
		{
			name:      "dated-today candidate vs recurring slot",
			candidate: model.Slot{Date: "2025-03-10", StartTime: "07:00", DurationMinutes: 30},
			existing:  model.Slot{StartTime: "07:15", DurationMinutes: 30, Recurring: true},
			wantOK:    false,
		},
		{
			name:      "dated-tomorrow candidate vs recurring slot",
			candidate: model.Slot{Date: "2025-03-11", StartTime: "07:00", DurationMinutes: 30},
			existing:  model.Slot{StartTime: "07:15", DurationMinutes: 30, Recurring: true},
			wantOK:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := ValidateClaim(tc.candidate, []model.Slot{tc.existing}, now)
			assert.Equal(t, tc.wantOK, decision.OK)
			if !tc.wantOK {
				assert.Equal(t, RejectOverlap, decision.Reason)
			}
		})
	}
}

func TestValidateClaimRejectsPastStartToday(t *testing.T) {
	now := date(t, "2025-03-10 06:30")
	candidate := model.Slot{User: "A.J.", Date: "2025-03-10", StartTime: "06:00", DurationMinutes: 15}

	decision := ValidateClaim(candidate, nil, now)
	assert.False(t, decision.OK)
	assert.Equal(t, RejectPastTime, decision.Reason)
}

func TestValidateClaimPastTimeEdges(t *testing.T) {
	now := date(t, "2025-03-10 06:30")

	// Starting exactly now is allowed; the rejection is strictly-before.
	atNow := model.Slot{Date: "2025-03-10", StartTime: "06:30", DurationMinutes: 15}
	assert.True(t, ValidateClaim(atNow, nil, now).OK)

	// A past time on a future date is fine.
	tomorrow := model.Slot{Date: "2025-03-11", StartTime: "06:00", DurationMinutes: 15}
	assert.True(t, ValidateClaim(tomorrow, nil, now).OK)

	// Recurring claims are exempt even when the time of day already passed.
	recurring := model.Slot{StartTime: "06:00", DurationMinutes: 15, Recurring: true}
	assert.True(t, ValidateClaim(recurring, nil, now).OK)
}

func TestValidateClaimOverlapWinsOverPastTime(t *testing.T) {
	now := date(t, "2025-03-10 06:30")
	existing := []model.Slot{
		{ID: "a", Date: "2025-03-10", StartTime: "06:00", DurationMinutes: 30},
	}
	candidate := model.Slot{Date: "2025-03-10", StartTime: "06:15", DurationMinutes: 15}

	assert.Equal(t, RejectOverlap, ValidateClaim(candidate, existing, now).Reason)
}

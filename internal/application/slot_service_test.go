package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shower-tracker/internal/testfixtures"
	"github.com/example/shower-tracker/internal/timeslot"
)

func newSlotService(t *testing.T, clock *testfixtures.Clock) *SlotService {
	t.Helper()
	return NewSlotService(testfixtures.SeededStore(t), nil, clock.NowFunc())
}

func TestClaimPersistsValidSlot(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	slot, err := svc.Claim(ctx, ClaimParams{
		User:            "mika",
		Date:            "2026-03-14",
		StartTime:       "07:30",
		DurationMinutes: 20,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, "mika", slot.User)
	assert.False(t, slot.Recurring)
}

func TestClaimValidation(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	_, err := svc.Claim(ctx, ClaimParams{
		User:            "",
		Date:            "14-03-2026",
		StartTime:       "7 o'clock",
		DurationMinutes: 0,
	})
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.FieldErrors, "user")
	assert.Contains(t, v.FieldErrors, "date")
	assert.Contains(t, v.FieldErrors, "startTime")
	assert.Contains(t, v.FieldErrors, "durationMinutes")
}

func TestClaimRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	first, err := svc.Claim(ctx, ClaimParams{
		User: "mika", Date: "2026-03-14", StartTime: "07:30", DurationMinutes: 20,
	})
	require.NoError(t, err)

	_, err = svc.Claim(ctx, ClaimParams{
		User: "ren", Date: "2026-03-14", StartTime: "07:40", DurationMinutes: 20,
	})
	var rejected *ClaimRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, string(timeslot.RejectOverlap), rejected.Reason)
	assert.Equal(t, first.ID, rejected.ConflictID)

	// Back to back is fine; the intervals are half open.
	_, err = svc.Claim(ctx, ClaimParams{
		User: "ren", Date: "2026-03-14", StartTime: "07:50", DurationMinutes: 10,
	})
	assert.NoError(t, err)
}

func TestClaimRejectsPastStart(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	// Reference time is 07:00; claiming 06:30 today is in the past.
	_, err := svc.Claim(ctx, ClaimParams{
		User: "mika", Date: "2026-03-14", StartTime: "06:30", DurationMinutes: 20,
	})
	var rejected *ClaimRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, string(timeslot.RejectPastTime), rejected.Reason)

	// The same wall-clock time tomorrow is fine.
	_, err = svc.Claim(ctx, ClaimParams{
		User: "mika", Date: "2026-03-15", StartTime: "06:30", DurationMinutes: 20,
	})
	assert.NoError(t, err)
}

func TestClaimRecurringDefaultsDate(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	slot, err := svc.Claim(ctx, ClaimParams{
		User: "sora", StartTime: "21:00", DurationMinutes: 30, Recurring: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", slot.Date)
	assert.True(t, slot.Recurring)
}

func TestDeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	slot, err := svc.Claim(ctx, ClaimParams{
		User: "mika", Date: "2026-03-14", StartTime: "07:30", DurationMinutes: 20,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, slot.ID, "ren"), ErrUnauthorized)
	assert.NoError(t, svc.Delete(ctx, slot.ID, "mika"))
	assert.ErrorIs(t, svc.Delete(ctx, slot.ID, "mika"), ErrNotFound)
}

func TestExtendGrowsSlot(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	slot, err := svc.Claim(ctx, ClaimParams{
		User: "mika", Date: "2026-03-14", StartTime: "07:30", DurationMinutes: 20,
	})
	require.NoError(t, err)

	grown, err := svc.Extend(ctx, slot.ID, "mika")
	require.NoError(t, err)
	assert.Equal(t, 25, grown.DurationMinutes)

	_, err = svc.Extend(ctx, slot.ID, "ren")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExtendBlockedByNeighbor(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	svc := newSlotService(t, clock)

	slot, err := svc.Claim(ctx, ClaimParams{
		User: "mika", Date: "2026-03-14", StartTime: "07:30", DurationMinutes: 20,
	})
	require.NoError(t, err)
	neighbor, err := svc.Claim(ctx, ClaimParams{
		User: "ren", Date: "2026-03-14", StartTime: "07:50", DurationMinutes: 10,
	})
	require.NoError(t, err)

	_, err = svc.Extend(ctx, slot.ID, "mika")
	var rejected *ClaimRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, neighbor.ID, rejected.ConflictID)

	// The stored slot is unchanged.
	stored, err := svc.store.Slots().Get(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.DurationMinutes)
}

func TestListSplitsTodayAndUpcoming(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	st := testfixtures.SeededStore(t,
		testfixtures.SlotFor("mika", testfixtures.WithStart("06:00"), testfixtures.WithDuration(15)),
		testfixtures.SlotFor("ren", testfixtures.WithStart("08:00")),
		testfixtures.SlotFor("sora", testfixtures.Recurring(), testfixtures.WithStart("21:00")),
		testfixtures.SlotFor("yuki", testfixtures.WithDate("2026-03-16"), testfixtures.WithStart("07:00")),
		testfixtures.SlotFor("old", testfixtures.WithDate("2026-03-10"), testfixtures.WithStart("07:00")),
	)
	svc := NewSlotService(st, nil, clock.NowFunc())

	listing, err := svc.List(ctx)
	require.NoError(t, err)

	require.Len(t, listing.Today, 3)
	assert.Equal(t, "mika", listing.Today[0].User)
	assert.True(t, listing.Today[0].Past, "06:00-06:15 is over by 07:00")
	assert.Equal(t, "ren", listing.Today[1].User)
	assert.False(t, listing.Today[1].Past)
	assert.Equal(t, "sora", listing.Today[2].User, "recurring slots list under today")

	require.Len(t, listing.Upcoming, 1)
	assert.Equal(t, "yuki", listing.Upcoming[0].User)
}

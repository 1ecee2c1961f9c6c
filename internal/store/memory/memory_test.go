package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

func newStore() *Store {
	next := 0
	return New().WithIDGenerator(func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	})
}

func TestStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	status, err := s.Status().Get(ctx)
	require.NoError(t, err)
	assert.False(t, status.Occupied())

	startedAt := time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)
	require.NoError(t, s.Status().Set(ctx, model.Occupy("mika", startedAt)))

	status, err = s.Status().Get(ctx)
	require.NoError(t, err)
	require.True(t, status.Occupied())
	assert.Equal(t, "mika", *status.CurrentUser)
	assert.Equal(t, startedAt, *status.StartedAt)

	require.NoError(t, s.Status().Set(ctx, model.Free()))
	status, err = s.Status().Get(ctx)
	require.NoError(t, err)
	assert.False(t, status.Occupied())
}

func TestSlotCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	created, err := s.Slots().Create(ctx, model.Slot{
		User:            "mika",
		Date:            "2026-03-14",
		StartTime:       "07:30",
		DurationMinutes: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)

	got, err := s.Slots().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	created.DurationMinutes = 25
	require.NoError(t, s.Slots().Update(ctx, created))
	got, err = s.Slots().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.DurationMinutes)

	require.NoError(t, s.Slots().Delete(ctx, created.ID))
	_, err = s.Slots().Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Slots().Update(ctx, created), store.ErrNotFound)
	assert.ErrorIs(t, s.Slots().Delete(ctx, created.ID), store.ErrNotFound)
}

func TestDeleteDatedThrough(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	seed := []model.Slot{
		{User: "mika", Date: "2026-03-12", StartTime: "07:00", DurationMinutes: 15},
		{User: "ren", Date: "2026-03-13", StartTime: "08:00", DurationMinutes: 15},
		{User: "ren", Date: "2026-03-14", StartTime: "08:00", DurationMinutes: 15},
		{User: "sora", Date: "2026-03-01", StartTime: "21:00", DurationMinutes: 30, Recurring: true},
	}
	for _, slot := range seed {
		_, err := s.Slots().Create(ctx, slot)
		require.NoError(t, err)
	}

	removed, err := s.Slots().DeleteDatedThrough(ctx, "2026-03-13")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	remaining, err := s.Slots().List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, slot := range remaining {
		assert.True(t, slot.Recurring || slot.Date > "2026-03-13")
	}
}

func TestLogStreamsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	base := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	entry := model.LogEntry{
		User:            "mika",
		StartedAt:       base,
		EndedAt:         base.Add(15 * time.Minute),
		DurationSeconds: 900,
	}

	_, err := s.Logs().Append(ctx, model.LogOperational, entry)
	require.NoError(t, err)
	_, err = s.Logs().Append(ctx, model.LogHistory, entry)
	require.NoError(t, err)

	removed, err := s.Logs().DeleteEndedBefore(ctx, model.LogOperational, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	operational, err := s.Logs().List(ctx, model.LogOperational)
	require.NoError(t, err)
	assert.Empty(t, operational)

	history, err := s.Logs().List(ctx, model.LogHistory)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLogListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	base := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Logs().Append(ctx, model.LogOperational, model.LogEntry{
			User:            "mika",
			StartedAt:       base.Add(time.Duration(i) * time.Hour),
			EndedAt:         base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			DurationSeconds: 600,
		})
		require.NoError(t, err)
	}

	entries, err := s.Logs().List(ctx, model.LogOperational)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].EndedAt.After(entries[1].EndedAt))
	assert.True(t, entries[1].EndedAt.After(entries[2].EndedAt))
}

func TestSubscriptionUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	sub := model.PushSubscription{
		Key:       "sub-a",
		User:      "mika",
		Endpoint:  "https://push.example.com/a",
		UpdatedAt: time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Subscriptions().Put(ctx, sub))

	sub.Endpoint = "https://push.example.com/b"
	require.NoError(t, s.Subscriptions().Put(ctx, sub))

	subs, err := s.Subscriptions().List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example.com/b", subs[0].Endpoint)

	require.NoError(t, s.Subscriptions().Delete(ctx, "sub-a"))
	assert.ErrorIs(t, s.Subscriptions().Delete(ctx, "sub-a"), store.ErrNotFound)
}

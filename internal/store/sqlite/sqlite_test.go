package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "shower.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := New(context.Background(), db)
	require.NoError(t, err)
	return st
}

func TestStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	status, err := st.Status().Get(ctx)
	require.NoError(t, err)
	assert.False(t, status.Occupied(), "fresh database starts free")

	startedAt := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	require.NoError(t, st.Status().Set(ctx, model.Occupy("mika", startedAt)))

	status, err = st.Status().Get(ctx)
	require.NoError(t, err)
	require.True(t, status.Occupied())
	assert.Equal(t, "mika", *status.CurrentUser)
	assert.True(t, status.StartedAt.Equal(startedAt))

	require.NoError(t, st.Status().Set(ctx, model.Free()))
	status, err = st.Status().Get(ctx)
	require.NoError(t, err)
	assert.False(t, status.Occupied())
}

func TestSlotCRUD(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	created, err := st.Slots().Create(ctx, model.Slot{
		User:            "ren",
		Date:            "2026-03-14",
		StartTime:       "07:30",
		DurationMinutes: 20,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := st.Slots().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	created.DurationMinutes = 25
	created.Completed = true
	require.NoError(t, st.Slots().Update(ctx, created))
	got, err = st.Slots().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.DurationMinutes)
	assert.True(t, got.Completed)

	require.NoError(t, st.Slots().Delete(ctx, created.ID))
	_, err = st.Slots().Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.Slots().Delete(ctx, created.ID), store.ErrNotFound)
	assert.ErrorIs(t, st.Slots().Update(ctx, created), store.ErrNotFound)
}

func TestDeleteDatedThroughKeepsRecurring(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	old, err := st.Slots().Create(ctx, model.Slot{User: "ren", Date: "2026-03-12", StartTime: "07:00", DurationMinutes: 20})
	require.NoError(t, err)
	daily, err := st.Slots().Create(ctx, model.Slot{User: "mika", Date: "2026-03-10", StartTime: "08:00", DurationMinutes: 15, Recurring: true})
	require.NoError(t, err)
	future, err := st.Slots().Create(ctx, model.Slot{User: "sora", Date: "2026-03-20", StartTime: "09:00", DurationMinutes: 30})
	require.NoError(t, err)

	removed, err := st.Slots().DeleteDatedThrough(ctx, "2026-03-13")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = st.Slots().Get(ctx, old.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Slots().Get(ctx, daily.ID)
	assert.NoError(t, err)
	_, err = st.Slots().Get(ctx, future.ID)
	assert.NoError(t, err)
}

func TestLogStreamsAreIndependent(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

	first, err := st.Logs().Append(ctx, model.LogOperational, model.LogEntry{
		User: "ren", StartedAt: base, EndedAt: base.Add(10 * time.Minute), DurationSeconds: 600,
	})
	require.NoError(t, err)
	// History reuses the operational entry's identifier.
	_, err = st.Logs().Append(ctx, model.LogHistory, first)
	require.NoError(t, err)

	removed, err := st.Logs().DeleteEndedBefore(ctx, model.LogOperational, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	operational, err := st.Logs().List(ctx, model.LogOperational)
	require.NoError(t, err)
	assert.Empty(t, operational)

	history, err := st.Logs().List(ctx, model.LogHistory)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.ID, history[0].ID)
	assert.True(t, history[0].EndedAt.Equal(first.EndedAt))
}

func TestLogListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		end := base.Add(time.Duration(i) * time.Hour)
		_, err := st.Logs().Append(ctx, model.LogOperational, model.LogEntry{
			User: "ren", StartedAt: end.Add(-10 * time.Minute), EndedAt: end, DurationSeconds: 600,
		})
		require.NoError(t, err)
	}

	entries, err := st.Logs().List(ctx, model.LogOperational)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].EndedAt.After(entries[1].EndedAt))
	assert.True(t, entries[1].EndedAt.After(entries[2].EndedAt))
}

func TestSubscriptionUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	now := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

	sub := model.PushSubscription{Key: "phone-1", User: "ren", Endpoint: "https://push.example/a", UpdatedAt: now}
	require.NoError(t, st.Subscriptions().Put(ctx, sub))

	sub.Endpoint = "https://push.example/b"
	sub.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, st.Subscriptions().Put(ctx, sub))

	subs, err := st.Subscriptions().List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/b", subs[0].Endpoint)

	require.NoError(t, st.Subscriptions().Delete(ctx, "phone-1"))
	assert.ErrorIs(t, st.Subscriptions().Delete(ctx, "phone-1"), store.ErrNotFound)
}

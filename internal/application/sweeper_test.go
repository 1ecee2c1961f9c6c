package application

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/testfixtures"
)

func TestSweepEnforcesRetention(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Time{})
	now := clock.Now()

	st := testfixtures.SeededStore(t,
		testfixtures.SlotFor("mika", testfixtures.WithDate("2026-03-12")),
		testfixtures.SlotFor("ren", testfixtures.WithDate("2026-03-13")),
		testfixtures.SlotFor("sora"), // today, kept
		testfixtures.SlotFor("yuki", testfixtures.Recurring(), testfixtures.WithDate("2026-03-01")),
	)

	appendLog := func(stream model.LogStream, user string, endedAgo time.Duration) {
		t.Helper()
		_, err := st.Logs().Append(ctx, stream, testfixtures.LogEntryFor(user, now.Add(-endedAgo), 15*time.Minute))
		require.NoError(t, err)
	}
	appendLog(model.LogOperational, "mika", 2*time.Hour)
	appendLog(model.LogOperational, "ren", 30*time.Hour)
	appendLog(model.LogHistory, "mika", 2*time.Hour)
	appendLog(model.LogHistory, "ren", 40*24*time.Hour)

	sweeper := NewSweeper(st, nil, time.Hour, 24*time.Hour, 30*24*time.Hour, clock.NowFunc(), zerolog.Nop())
	stats, err := sweeper.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.LogEntries)
	assert.Equal(t, 1, stats.HistoryEntries)
	assert.Equal(t, 2, stats.Slots)
	assert.Equal(t, 4, stats.Total())

	slots, err := st.Slots().List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.True(t, slot.Recurring || slot.Date == "2026-03-14")
	}

	operational, err := st.Logs().List(ctx, model.LogOperational)
	require.NoError(t, err)
	require.Len(t, operational, 1)
	assert.Equal(t, "mika", operational[0].User)

	// A second pass finds nothing left to remove.
	stats, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total())
}

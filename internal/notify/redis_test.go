package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = st.Close() })
	return st, mr
}

func TestRedisStoreKeepsFirstMark(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, st.Ping(ctx))

	ok, err := st.IsNotified(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	require.NoError(t, st.MarkNotified(ctx, 1, first))
	require.NoError(t, st.MarkNotified(ctx, 1, first.Add(time.Hour)))

	ok, err = st.IsNotified(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2026-10-19T08:00:00Z", mr.HGet(DefaultRedisKey, "1"), "first mark wins")
}

func TestRedisStoreListNotifications(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	require.NoError(t, st.MarkNotified(ctx, 7, base))
	require.NoError(t, st.MarkNotified(ctx, 3, base.Add(time.Minute)))
	require.NoError(t, st.MarkNotified(ctx, 5, base.Add(time.Minute)))
	mr.HSet(DefaultRedisKey, "not-a-ticket", base.Format(time.RFC3339))

	list, err := st.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3, "non-numeric fields are skipped")
	assert.Equal(t, []int{3, 5, 7}, []int{list[0].TicketID, list[1].TicketID, list[2].TicketID},
		"newest first, ties by ticket id")
	assert.True(t, list[2].NotifiedAt.Equal(base))
}

func TestRedisStoreCustomKey(t *testing.T) {
	mr := miniredis.RunT(t)
	st := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr(), Key: "cm:alerts"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.MarkNotified(context.Background(), 9, time.Now()))
	assert.True(t, mr.Exists("cm:alerts"))
	assert.False(t, mr.Exists(DefaultRedisKey))
}

func TestRedisStoreUnavailable(t *testing.T) {
	st, mr := newRedisStore(t)
	mr.Close()

	_, err := st.IsNotified(context.Background(), 1)
	assert.Error(t, err)
	assert.Error(t, st.MarkNotified(context.Background(), 1, time.Now()))
}

func TestNotifyWithRedisStore(t *testing.T) {
	st, _ := newRedisStore(t)
	tr := newFakeTracker()
	n := newTestNotifier(tr, st)
	ctx := context.Background()

	batch := []model.Projection{projection(1, model.StatusAtRisk), projection(2, model.StatusOnTrack)}
	sent, err := n.Notify(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = n.Notify(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, sent)

	list, err := st.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].TicketID)
}

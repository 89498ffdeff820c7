package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/apfk88/heartglance/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ReadingStore {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewReadingStore(client)
}

func TestReadingStore_EmptyWindow(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.WindowStats(context.Background(), time.Now(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.RollingStats{}, stats)
}

func TestReadingStore_WindowStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 100, At: now.Add(-30 * time.Second)}))
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 140, At: now.Add(-20 * time.Second)}))
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 90, At: now.Add(-10 * time.Second)}))

	stats, err := store.WindowStats(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 110, stats.Average)
	assert.Equal(t, 140, stats.Maximum)
	assert.Equal(t, 90, stats.Minimum)
}

func TestReadingStore_TrimsExpiredReadings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 180, At: now.Add(-2 * time.Minute)}))
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 80, At: now}))

	stats, err := store.WindowStats(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 80, stats.Average)
	assert.Equal(t, 80, stats.Maximum)
}

func TestReadingStore_SameMillisecondReadings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 100, At: now}))
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 102, At: now}))

	stats, err := store.WindowStats(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 101, stats.Average)
}

func TestReadingStore_SameMillisecondSameBPM(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	// Identical readings in the same millisecond must count twice.
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 100, At: now}))
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 100, At: now}))
	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 130, At: now}))

	stats, err := store.WindowStats(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 110, stats.Average)
	assert.Equal(t, 130, stats.Maximum)
	assert.Equal(t, 100, stats.Minimum)
}

func TestReadingStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Append(ctx, domain.Reading{BPM: 100, At: now}))
	require.NoError(t, store.Reset(ctx))

	stats, err := store.WindowStats(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natewolfe/dreamcensus-sub001/internal/progress"
)

func sampleEntry() *Entry {
	return &Entry{
		Groupings: map[string]progress.Progress{
			"ch-a": {Answered: 2, Total: 2, IsComplete: true},
			"ch-b": {Answered: 0, Total: 3},
		},
		Locked: map[string]bool{"ch-a": false, "ch-b": false},
	}
}

func TestMemoryProgressCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProgressCache(time.Minute)

	got, _, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "alice", "v1", 0, sampleEntry()))

	got, _, err = c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *sampleEntry(), *got)

	// Other subjects and versions are separate keys.
	got, _, err = c.Get(ctx, "bob", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, _, err = c.Get(ctx, "alice", "v2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryProgressCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProgressCache(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "alice", "v1", 0, sampleEntry()))

	now = now.Add(59 * time.Second)
	got, _, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(time.Second)
	got, _, err = c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryProgressCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProgressCache(time.Minute)

	require.NoError(t, c.Set(ctx, "alice", "v1", 0, sampleEntry()))
	require.NoError(t, c.Invalidate(ctx, "alice", "v1"))

	got, _, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryProgressCache_ZeroTTLDisables(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProgressCache(0)

	require.NoError(t, c.Set(ctx, "alice", "v1", 0, sampleEntry()))
	got, _, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryProgressCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProgressCache(time.Minute)
	e := sampleEntry()
	require.NoError(t, c.Set(ctx, "alice", "v1", 0, e))

	e.Locked["ch-b"] = true
	got, _, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.False(t, got.Locked["ch-b"])

	got.Groupings["ch-a"] = progress.Progress{}
	again, _, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.True(t, again.Groupings["ch-a"].IsComplete)
}

func TestMemoryProgressCache_SetAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProgressCache(time.Minute)

	_, gen, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)

	// A write lands between the read and the store of the computed entry.
	require.NoError(t, c.Invalidate(ctx, "alice", "v1"))
	require.NoError(t, c.Set(ctx, "alice", "v1", gen, sampleEntry()))

	got, gen, err := c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, uint64(1), gen)

	require.NoError(t, c.Set(ctx, "alice", "v1", gen, sampleEntry()))
	got, _, err = c.Get(ctx, "alice", "v1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "progress:alice:2026.1", key("alice", "2026.1"))
	assert.NotEqual(t, key("a:b", "c"), key("a", "b:c"))
	assert.Equal(t, "progress:a%3Ab:c", key("a:b", "c"))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

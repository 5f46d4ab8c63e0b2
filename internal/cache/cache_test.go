package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, enabled bool) (*Cache, *time.Time) {
	t.Helper()
	c := New(enabled)
	t.Cleanup(c.Close)
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSetGetAndExpiry(t *testing.T) {
	c, now := newTestCache(t, true)

	etag := c.Set("nightly:2025-10-09", []byte(`{"date":"2025-10-09"}`), time.Minute)
	data, got, ok := c.Get("nightly:2025-10-09")
	require.True(t, ok)
	assert.Equal(t, etag, got)
	assert.JSONEq(t, `{"date":"2025-10-09"}`, string(data))

	*now = now.Add(2 * time.Minute)
	_, _, ok = c.Get("nightly:2025-10-09")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalKeys)
	assert.Equal(t, 1, stats.ExpiredKeys)

	c.evict()
	assert.Equal(t, 0, c.Stats().TotalKeys)
}

func TestDisabledCacheNeverHits(t *testing.T) {
	c, _ := newTestCache(t, false)

	etag := c.Set("k", []byte("v"), time.Hour)
	assert.Equal(t, ComputeETag([]byte("v")), etag)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Stats().Enabled)
}

func TestPurge(t *testing.T) {
	c, _ := newTestCache(t, true)
	c.Set("nightly:2025-10-08", []byte("a"), time.Hour)
	c.Set("nightly:2025-10-09", []byte("b"), time.Hour)
	c.Set("season:20252026:R", []byte("c"), time.Hour)

	assert.Equal(t, 3, c.Purge())
	_, _, ok := c.Get("season:20252026:R")
	assert.False(t, ok)
	stats := c.Stats()
	assert.Equal(t, 0, stats.TotalKeys)
	assert.Equal(t, 1, stats.Purges)
}

func TestETags(t *testing.T) {
	a := ComputeETag([]byte("one"))
	assert.Equal(t, a, ComputeETag([]byte("one")))
	assert.NotEqual(t, a, ComputeETag([]byte("two")))
	assert.Regexp(t, `^W/"[0-9a-f]{16}"$`, a)

	assert.False(t, CheckETagMatch("", a))
	assert.True(t, CheckETagMatch("*", a))
	assert.True(t, CheckETagMatch(a, a))
	assert.True(t, CheckETagMatch(`W/"0000000000000000", `+a, a))
	assert.False(t, CheckETagMatch(`W/"0000000000000000"`, a))
}

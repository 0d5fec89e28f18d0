package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string, int](4, 0)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2, 0)

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRUTTLExpiration(t *testing.T) {
	c := NewLRU[string, []float32](4, 10*time.Millisecond)

	c.Set("query", []float32{0.1, 0.2})
	_, ok := c.Get("query")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("query")
	assert.False(t, ok)
}

func TestLRUZeroTTLNeverExpires(t *testing.T) {
	c := NewLRU[string, int](4, 0)
	c.Set("a", 1)

	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestLRUMinimumCapacity(t *testing.T) {
	c := NewLRU[string, int](0, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("b")
	assert.True(t, ok)
}

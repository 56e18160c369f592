package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsLeastRecent(t *testing.T) {
	c := NewLRU(2, 0)
	c.Set("a", []string{"1"})
	c.Set("b", []string{"2"})
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("c", []string{"3"})

	_, ok = c.Get("b")
	assert.False(t, ok, "b should be evicted")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"1"}, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRUOverwrite(t *testing.T) {
	c := NewLRU(4, 0)
	c.Set("a", []string{"1"})
	c.Set("a", []string{"2"})
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"2"}, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRUExpires(t *testing.T) {
	c := NewLRU(4, time.Millisecond)
	c.Set("a", []string{"1"})
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUStats(t *testing.T) {
	c := NewLRU(0, 0)
	c.Get("x")
	c.Set("x", nil)
	c.Get("x")
	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

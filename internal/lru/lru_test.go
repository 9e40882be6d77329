package lru_test

import (
	"strings"
	"testing"
	"time"

	"bennypowers.dev/csslens/internal/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictionOrder(t *testing.T) {
	t.Run("insertion past capacity evicts the least recently inserted key", func(t *testing.T) {
		c := lru.NewCache[string, int](3, 0)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)
		c.Put("d", 4)

		_, ok := c.Get("a")
		assert.False(t, ok, "oldest key should be gone")
		for _, k := range []string{"b", "c", "d"} {
			_, ok := c.Get(k)
			assert.True(t, ok, "key %q should survive", k)
		}
		assert.Equal(t, 3, c.Len())
	})

	t.Run("a read protects a key from eviction", func(t *testing.T) {
		c := lru.NewCache[string, int](3, 0)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)

		// touching "a" makes "b" the least recently used
		_, ok := c.Get("a")
		require.True(t, ok)

		c.Put("d", 4)

		_, ok = c.Get("b")
		assert.False(t, ok, "least recently used key should be evicted")
		_, ok = c.Get("a")
		assert.True(t, ok, "recently read key should survive")
	})

	t.Run("updating an existing key does not evict", func(t *testing.T) {
		c := lru.NewCache[string, int](2, 0)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("a", 10)

		v, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, 10, v)
		_, ok = c.Get("b")
		assert.True(t, ok)
	})
}

func TestTTLExpiry(t *testing.T) {
	t.Run("entries older than the ttl miss on read", func(t *testing.T) {
		c := lru.NewCache[string, string](8, 10*time.Millisecond)
		c.Put("k", "v")

		_, ok := c.Get("k")
		require.True(t, ok, "fresh entry should hit")

		time.Sleep(25 * time.Millisecond)

		_, ok = c.Get("k")
		assert.False(t, ok, "stale entry should miss")
		assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
	})

	t.Run("zero ttl disables expiry", func(t *testing.T) {
		c := lru.NewCache[string, string](8, 0)
		c.Put("k", "v")
		time.Sleep(5 * time.Millisecond)
		_, ok := c.Get("k")
		assert.True(t, ok)
	})

	t.Run("put refreshes the timestamp", func(t *testing.T) {
		c := lru.NewCache[string, string](8, 30*time.Millisecond)
		c.Put("k", "v1")
		time.Sleep(20 * time.Millisecond)
		c.Put("k", "v2")
		time.Sleep(20 * time.Millisecond)

		v, ok := c.Get("k")
		require.True(t, ok, "refreshed entry should still be live")
		assert.Equal(t, "v2", v)
	})
}

func TestEvictWhere(t *testing.T) {
	c := lru.NewCache[string, int](16, 0)
	c.Put("--a:file:///one.css", 1)
	c.Put("--b:file:///one.css", 2)
	c.Put("--a:file:///two.css", 3)

	n := c.EvictWhere(func(k string) bool {
		return strings.HasSuffix(k, ":file:///one.css")
	})

	assert.Equal(t, 2, n)
	_, ok := c.Get("--a:file:///two.css")
	assert.True(t, ok, "entries for other documents are untouched")
	assert.Equal(t, 1, c.Len())
}

func TestClearAndCap(t *testing.T) {
	c := lru.NewCache[int, int](0, 0) // capacity normalised to 1
	assert.Equal(t, 1, c.Cap())

	c.Put(1, 1)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(1)
	assert.False(t, ok)
}

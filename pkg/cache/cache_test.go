package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Basic(t *testing.T) {
	c := New(Options[string]{MaxEntries: 3})

	c.Set("a", "value_a")
	c.Set("b", "value_b")
	c.Set("c", "value_c")

	assert.Equal(t, 3, c.Len())

	val, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "value_a", val)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	c := New(Options[string]{
		MaxEntries: 3,
		OnEvict:    func(key string, _ string) { evicted = append(evicted, key) },
	})

	c.Set("a", "value_a")
	c.Set("b", "value_b")
	c.Set("c", "value_c")

	// Touch 'a' so 'b' becomes the least recently used entry.
	c.Get("a")
	c.Set("d", "value_d")

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"b"}, evicted)

	_, found := c.Get("b")
	assert.False(t, found)
	for _, key := range []string{"a", "c", "d"} {
		_, found = c.Get(key)
		assert.True(t, found, key)
	}
}

func TestLRU_MaxBytes(t *testing.T) {
	c := New(Options[string]{
		MaxBytes: 10,
		Sizer:    func(s string) int { return len(s) },
	})

	c.Set("a", "12345")
	c.Set("b", "12345")
	assert.Equal(t, 2, c.Len())

	c.Set("c", "1")
	assert.Equal(t, 2, c.Len())
	_, found := c.Get("a")
	assert.False(t, found)

	// A single oversized entry is still cached.
	c.Set("big", "01234567890123456789")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(20), c.Stats().CurrentBytes)
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := New(Options[string]{Sizer: func(s string) int { return len(s) }})
	c.Set("a", "x")
	c.Set("a", "xyz")

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(3), c.Stats().CurrentBytes)
	val, _ := c.Get("a")
	assert.Equal(t, "xyz", val)
}

func TestLRU_Lookup(t *testing.T) {
	c := New(Options[int]{})
	stamp := Stamp{ModTime: 100, Size: 10}
	c.SetStamped("file.js", 42, stamp)

	val, err := c.Lookup("file.js", stamp)
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	_, err = c.Lookup("file.js", Stamp{ModTime: 200, Size: 10})
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, 0, c.Len(), "stale entries are dropped")

	_, err = c.Lookup("other.js", stamp)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Stale)
	assert.InDelta(t, 1.0/3.0, stats.HitRate(), 0.0001)
}

func TestLRU_DeleteAndClear(t *testing.T) {
	c := New(Options[string]{})
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestLRU_SaveLoad(t *testing.T) {
	c := New(Options[string]{MaxEntries: 10})
	c.SetStamped("a", "value_a", Stamp{ModTime: 1, Size: 2})
	c.Set("b", "value_b")
	c.Get("a")

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(Options[string]{MaxEntries: 1})
	require.NoError(t, restored.Load(&buf))

	// Only the most recently used entry fits.
	assert.Equal(t, 1, restored.Len())
	val, err := restored.Lookup("a", Stamp{ModTime: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, "value_a", val)
}

func TestLRU_SaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.msgpack")

	c := New(Options[string]{})
	c.Set("k", "v")
	require.NoError(t, c.SaveFile(path))

	restored := New(Options[string]{})
	require.NoError(t, restored.LoadFile(path))
	val, found := restored.Get("k")
	require.True(t, found)
	assert.Equal(t, "v", val)

	assert.NoError(t, restored.LoadFile(filepath.Join(t.TempDir(), "absent")))
}

func TestStampOf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(path, []byte("const a = 1;"), 0644))

	first, err := StampOf(path)
	require.NoError(t, err)
	assert.Equal(t, int64(12), first.Size)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	second, err := StampOf(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = StampOf(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestLRU_Concurrent(t *testing.T) {
	c := New(Options[int]{MaxEntries: 50})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (n+j)%26))
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 26)
}

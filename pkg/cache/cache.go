// Package cache provides a bounded LRU cache whose entries can be stamped
// with the modification time and size of the file they were derived from.
// Entries can be persisted with msgpack so expensive lookups survive between
// runs.
package cache

import (
	"container/list"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrKeyNotFound is returned when a key is not found in the cache.
var ErrKeyNotFound = errors.New("key not found")

// ErrStale is returned when a key is present but its file stamp no longer
// matches the file on disk.
var ErrStale = errors.New("stale cache entry")

// Stamp identifies one version of a file on disk.
type Stamp struct {
	ModTime int64 `msgpack:"m" json:"mod_time"`
	Size    int64 `msgpack:"s" json:"size"`
}

// StampOf returns the current stamp of the file at path.
func StampOf(path string) (Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}, err
	}
	return Stamp{ModTime: info.ModTime().UnixNano(), Size: info.Size()}, nil
}

// Entry is one cached value together with the stamp it was computed for.
type Entry[V any] struct {
	Key   string `msgpack:"k"`
	Value V      `msgpack:"v"`
	Stamp Stamp  `msgpack:"t"`
	Size  int    `msgpack:"n"`
}

// Options configures an LRU cache.
type Options[V any] struct {
	// MaxEntries is the maximum number of entries. 0 means unlimited.
	MaxEntries int

	// MaxBytes bounds the sum of entry sizes as reported by Sizer.
	// 0 means unlimited.
	MaxBytes int64

	// Sizer estimates the size of a value. Entries count as 1 without it.
	Sizer func(V) int

	// OnEvict is called when an entry is evicted to make room.
	OnEvict func(key string, value V)
}

// Stats reports cache usage.
type Stats struct {
	Length       int   `json:"length"`
	CurrentBytes int64 `json:"current_bytes"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Stale        int64 `json:"stale"`
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses + s.Stale
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// LRU is a least-recently-used cache safe for concurrent use.
type LRU[V any] struct {
	mu    sync.Mutex
	opts  Options[V]
	items map[string]*list.Element
	order *list.List // front is most recently used
	bytes int64

	hits   atomic.Int64
	misses atomic.Int64
	stale  atomic.Int64
}

// New creates an LRU cache.
func New[V any](opts Options[V]) *LRU[V] {
	return &LRU[V]{
		opts:  opts,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the value stored under key regardless of its stamp.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*Entry[V]).Value, true
}

// Lookup returns the value stored under key if it was computed for stamp.
// A stale entry is removed and reported with ErrStale.
func (c *LRU[V]) Lookup(key string, stamp Stamp) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return zero, ErrKeyNotFound
	}
	entry := el.Value.(*Entry[V])
	if entry.Stamp != stamp {
		c.stale.Add(1)
		c.remove(el)
		return zero, ErrStale
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return entry.Value, nil
}

// Set stores value under key with an empty stamp.
func (c *LRU[V]) Set(key string, value V) {
	c.SetStamped(key, value, Stamp{})
}

// SetStamped stores value under key for the given file stamp.
func (c *LRU[V]) SetStamped(key string, value V, stamp Stamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(&Entry[V]{Key: key, Value: value, Stamp: stamp, Size: c.size(value)})
}

func (c *LRU[V]) size(value V) int {
	if c.opts.Sizer == nil {
		return 1
	}
	return c.opts.Sizer(value)
}

func (c *LRU[V]) put(entry *Entry[V]) {
	if el, ok := c.items[entry.Key]; ok {
		old := el.Value.(*Entry[V])
		c.bytes += int64(entry.Size - old.Size)
		el.Value = entry
		c.order.MoveToFront(el)
	} else {
		c.items[entry.Key] = c.order.PushFront(entry)
		c.bytes += int64(entry.Size)
	}
	c.evict()
}

func (c *LRU[V]) evict() {
	for c.overLimit() {
		back := c.order.Back()
		if back == nil {
			return
		}
		entry := back.Value.(*Entry[V])
		c.remove(back)
		if c.opts.OnEvict != nil {
			c.opts.OnEvict(entry.Key, entry.Value)
		}
	}
}

func (c *LRU[V]) overLimit() bool {
	if c.opts.MaxEntries > 0 && c.order.Len() > c.opts.MaxEntries {
		return true
	}
	// A single entry larger than the budget is kept.
	return c.opts.MaxBytes > 0 && c.bytes > c.opts.MaxBytes && c.order.Len() > 1
}

func (c *LRU[V]) remove(el *list.Element) {
	entry := c.order.Remove(el).(*Entry[V])
	delete(c.items, entry.Key)
	c.bytes -= int64(entry.Size)
}

// Delete removes key from the cache.
func (c *LRU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Clear removes every entry and resets the statistics.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.bytes = 0
	c.hits.Store(0)
	c.misses.Store(0)
	c.stale.Store(0)
}

// Len returns the number of entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Length:       c.order.Len(),
		CurrentBytes: c.bytes,
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Stale:        c.stale.Load(),
	}
}

// Save writes the entries, least recently used first, using msgpack.
func (c *LRU[V]) Save(w io.Writer) error {
	c.mu.Lock()
	entries := make([]Entry[V], 0, c.order.Len())
	for el := c.order.Back(); el != nil; el = el.Prev() {
		entries = append(entries, *el.Value.(*Entry[V]))
	}
	c.mu.Unlock()

	if err := msgpack.NewEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	return nil
}

// Load replaces the cache contents with entries read by Save. Recency order
// is preserved and the size limits are applied.
func (c *LRU[V]) Load(r io.Reader) error {
	var entries []Entry[V]
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.bytes = 0
	for i := range entries {
		c.put(&entries[i])
	}
	return nil
}

// SaveFile persists the cache to path, creating parent directories.
func (c *LRU[V]) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()
	return c.Save(f)
}

// LoadFile restores the cache from path. A missing file is not an error.
func (c *LRU[V]) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}

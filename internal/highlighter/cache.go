package highlighter

import (
	"container/list"
	"sync"

	"fuzzyhl/internal/classify"
	"fuzzyhl/internal/fuzzy"

	"github.com/cespare/xxhash/v2"
)

type cacheKey struct {
	Sum     uint64
	Size    int
	Options Options
}

func cacheKeyForRequest(req Request) cacheKey {
	return cacheKey{
		Sum:     xxhash.Sum64(req.Src),
		Size:    len(req.Src),
		Options: req.Options,
	}
}

type cacheEntry struct {
	key   cacheKey
	spans []classify.Span
	ast   string
	stats fuzzy.Stats
}

type spanLRU struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[cacheKey]*list.Element
}

func newSpanLRU(capacity int) *spanLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &spanLRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[cacheKey]*list.Element, capacity),
	}
}

func (c *spanLRU) Get(key cacheKey) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return cacheEntry{}, false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(cacheEntry), true
}

func (c *spanLRU) Set(key cacheKey, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.ll.MoveToFront(elem)
		return
	}

	elem := c.ll.PushFront(entry)
	c.items[key] = elem

	if c.ll.Len() <= c.capacity {
		return
	}

	back := c.ll.Back()
	if back == nil {
		return
	}
	evicted := back.Value.(cacheEntry)
	delete(c.items, evicted.key)
	c.ll.Remove(back)
}

func (c *spanLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

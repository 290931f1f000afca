package towerdb

import (
	"container/list"
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

const (
	cacheShardCount      = 16
	defaultCacheCapacity = 4096
)

// Cache is a bounded LRU in front of a Store. Misses are cached too, so a
// scan full of unsurveyed cells does not hit the backend repeatedly. Backend
// errors are never cached.
type Cache struct {
	store  Store
	shards [cacheShardCount]cacheShard

	lookups atomic.Uint64
	hits    atomic.Uint64
}

type cacheShard struct {
	mu      sync.Mutex
	max     int
	order   *list.List
	entries map[uint64]*list.Element
}

type cacheEntry struct {
	hash  uint64
	key   Key
	tower Tower
	found bool
}

// CacheStats reports lookup counters.
type CacheStats struct {
	Lookups uint64
	Hits    uint64
	Entries int
}

// NewCache wraps store with an LRU of roughly capacity entries.
func NewCache(store Store, capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	perShard := capacity / cacheShardCount
	if perShard <= 0 {
		perShard = 1
	}
	c := &Cache{store: store}
	for i := range c.shards {
		c.shards[i] = cacheShard{
			max:     perShard,
			order:   list.New(),
			entries: make(map[uint64]*list.Element, perShard),
		}
	}
	return c
}

func keyHash(k Key) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(k.MCC))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(k.MNC))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(k.Area))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(k.CellID))
	return xxh3.Hash(buf[:])
}

// Lookup serves from the LRU, falling through to the store on a miss.
func (c *Cache) Lookup(ctx context.Context, key Key) (Tower, bool, error) {
	c.lookups.Add(1)
	h := keyHash(key)
	shard := &c.shards[h%cacheShardCount]

	shard.mu.Lock()
	if el, ok := shard.entries[h]; ok {
		entry := el.Value.(*cacheEntry)
		if entry.key == key {
			shard.order.MoveToFront(el)
			shard.mu.Unlock()
			c.hits.Add(1)
			return entry.tower, entry.found, nil
		}
	}
	shard.mu.Unlock()

	tower, found, err := c.store.Lookup(ctx, key)
	if err != nil {
		return Tower{}, false, err
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if el, ok := shard.entries[h]; ok {
		el.Value = &cacheEntry{hash: h, key: key, tower: tower, found: found}
		shard.order.MoveToFront(el)
		return tower, found, nil
	}
	shard.entries[h] = shard.order.PushFront(&cacheEntry{hash: h, key: key, tower: tower, found: found})
	for shard.order.Len() > shard.max {
		oldest := shard.order.Back()
		shard.order.Remove(oldest)
		delete(shard.entries, oldest.Value.(*cacheEntry).hash)
	}
	return tower, found, nil
}

// Stats returns counters and the current entry count.
func (c *Cache) Stats() CacheStats {
	stats := CacheStats{Lookups: c.lookups.Load(), Hits: c.hits.Load()}
	for i := range c.shards {
		shard := &c.shards[i]
		shard.mu.Lock()
		stats.Entries += shard.order.Len()
		shard.mu.Unlock()
	}
	return stats
}

// Close closes the wrapped store.
func (c *Cache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}

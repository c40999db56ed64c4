package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ntarasov/cloudpipe/pkg/metrics"
)

type entry struct {
	id        string
	expiresAt time.Time
}

// DedupCache — LRU-множество недавно обработанных event_id с TTL.
// Быстрый путь дедупликации перед походом в Postgres: попадание в кэш
// означает «уже обработано», промах ничего не гарантирует (финальный
// арбитр — inbox в БД).
type DedupCache struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

func NewDedupCache(capacity int, ttl time.Duration) *DedupCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &DedupCache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Seen — true, если событие недавно помечалось как обработанное.
func (c *DedupCache) Seen(_ context.Context, eventID string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[eventID]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
		return false
	}
	c.ll.MoveToFront(elem)

	if c.ttl > 0 {
		ent.expiresAt = c.expiryFrom(now)
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return true
}

// Mark — пометить событие как обработанное.
func (c *DedupCache) Mark(_ context.Context, eventID string) {
	if eventID == "" {
		return
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[eventID]; ok {
		ent := elem.Value.(*entry)
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry{
		id:        eventID,
		expiresAt: c.expiryFrom(now),
	})
	c.index[eventID] = elem
	metrics.CacheSize.Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
}

// WarmUp — предзаполнение кэша известными event_id (например, последними
// записями inbox'а при старте).
func (c *DedupCache) WarmUp(ctx context.Context, eventIDs []string) {
	for _, id := range eventIDs {
		c.Mark(ctx, id)
	}
}

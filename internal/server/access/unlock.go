package access

import "sync"

// UnlockCache records which password-protected items a session has unlocked.
// Entries are only added after a successful password check and are never
// revoked; they live exactly as long as the session that holds the cache.
type UnlockCache interface {
	IsUnlocked(id int64) bool
	MarkUnlocked(id int64)
}

// MemoryUnlockCache is an UnlockCache for a single session.
type MemoryUnlockCache struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewMemoryUnlockCache() *MemoryUnlockCache {
	return &MemoryUnlockCache{ids: make(map[int64]struct{})}
}

func (c *MemoryUnlockCache) IsUnlocked(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

func (c *MemoryUnlockCache) MarkUnlocked(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = struct{}{}
}

// IDs returns the unlocked ids, e.g. to persist them in a session store.
func (c *MemoryUnlockCache) IDs() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int64, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	return out
}

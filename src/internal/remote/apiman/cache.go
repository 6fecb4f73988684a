package apiman

import (
	"sync"
)

// Cache remembers server-assigned policy ids by natural key so that an
// Update right after an Exists check does not list the policies again. It also keeps
// the versions seen as published; publishing cannot be undone.
//
// All methods are safe for concurrent use.
type Cache struct {
	mu        sync.RWMutex
	policyIDs map[string]int64
	published map[string]bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{policyIDs: make(map[string]int64), published: make(map[string]bool)}
}

// GetPolicyID returns the cached id for key.
func (c *Cache) GetPolicyID(key string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.policyIDs[key]
	return id, ok
}

// SetPolicyID stores the id for key.
func (c *Cache) SetPolicyID(key string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policyIDs[key] = id
}

// IsPublished reports whether the version key was marked published.
func (c *Cache) IsPublished(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.published[key]
}

// SetPublished marks the version key as published.
func (c *Cache) SetPublished(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[key] = true
}

// Clear drops all cached data.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policyIDs = make(map[string]int64)
	c.published = make(map[string]bool)
}

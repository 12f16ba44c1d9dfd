package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kelsara/sigil/core"
)

// InMemoryCache implements an in-memory account cache
type InMemoryCache struct {
	cache   map[string]*cachedRecord
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRecord struct {
	account  *core.Account
	cachedAt time.Time
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// Get retrieves an account from cache
func (c *InMemoryCache) Get(accountID string) (*core.Account, error) {
	c.mu.RLock()
	record, exists := c.cache[accountID]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	if time.Since(record.cachedAt) > c.ttl {
		// expired
		atomic.AddInt64(&c.misses, 1)
		if err := c.Delete(accountID); err != nil {
			return nil, err
		}
		return nil, core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return record.account, nil
}

// Set stores an account in cache
func (c *InMemoryCache) Set(accountID string, account *core.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.cache[accountID] = &cachedRecord{
		account:  account,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete removes an account from cache
func (c *InMemoryCache) Delete(accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[accountID]; existed {
		delete(c.cache, accountID)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear removes all accounts from cache
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRecord)
	return nil
}

// Len returns the number of cached accounts
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats returns cache statistics
func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}

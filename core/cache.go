package core

import "time"

// Cache holds resolved accounts keyed by account id so that bearer
// resolution does not hit the store on every request. Entries are
// best-effort: a miss or a failed set never fails the request.
type Cache interface {
	Get(accountID string) (*Account, error)
	Set(accountID string, account *Account) error
	Delete(accountID string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

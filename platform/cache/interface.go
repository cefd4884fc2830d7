package cache

import "time"

// CacheService is the answer-cache surface shared by the in-process L1 and
// the optional Redis L2.
type CacheService interface {
	GetCache(key string) (interface{}, bool)
	SetCache(key string, value interface{}, expiration time.Duration) error
	DelCache(key string) error
}

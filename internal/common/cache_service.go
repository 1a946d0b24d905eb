package common

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process cache, used when Redis is not configured.
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	return &CacheService{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (cs *CacheService) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	cs.cache.Set(key, data, ttl)
	return nil
}

func (cs *CacheService) Get(_ context.Context, key string, dest interface{}) error {
	val, found := cs.cache.Get(key)
	if !found {
		return ErrCacheMiss
	}
	return json.Unmarshal(val.([]byte), dest)
}

func (cs *CacheService) Delete(_ context.Context, key string) error {
	cs.cache.Delete(key)
	return nil
}

func (cs *CacheService) Ping(context.Context) error {
	return nil
}

func (cs *CacheService) Name() string {
	return "memory"
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}

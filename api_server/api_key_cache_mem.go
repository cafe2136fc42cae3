package main

import (
	"context"
	"sync"
	"time"
)

// APIKeyCache 进程内TTL缓存，减少每次签名都回源DB
type APIKeyCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]cacheItem
}

type cacheItem struct {
	row    *APIKeyRow
	expire time.Time
}

func newAPIKeyCache() *APIKeyCache {
	ttlSec := getenvInt("API_KEY_CACHE_TTL_SEC", 30)
	if ttlSec <= 0 {
		ttlSec = 30
	}
	return &APIKeyCache{
		ttl:  time.Duration(ttlSec) * time.Second,
		data: map[string]cacheItem{},
	}
}

func (c *APIKeyCache) Get(_ context.Context, key string) (*APIKeyRow, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || it.row == nil {
		return nil, false
	}
	if time.Now().After(it.expire) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return it.row, true
}

func (c *APIKeyCache) Set(_ context.Context, row *APIKeyRow) {
	if c == nil || row == nil {
		return
	}
	c.mu.Lock()
	c.data[row.Key] = cacheItem{row: row, expire: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

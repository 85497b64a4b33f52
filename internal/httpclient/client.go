// Package httpclient hands out pooled HTTP clients keyed by timeout. All
// clients share one transport so connections to the embedding and LLM
// backends are reused; the per-timeout cache is a small LRU so unusual
// timeout values cannot grow it without bound.
package httpclient

import (
	"container/list"
	"net/http"
	"sync"
	"time"
)

const defaultMaxClients = 10

var (
	transportOnce   sync.Once
	sharedTransport *http.Transport
)

type cacheEntry struct {
	timeoutKey int64
	client     *http.Client
}

type clientCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	byKey   map[int64]*list.Element
}

var cache = &clientCache{
	maxSize: defaultMaxClients,
	order:   list.New(),
	byKey:   make(map[int64]*list.Element),
}

func sharedRoundTripper() *http.Transport {
	transportOnce.Do(func() {
		sharedTransport = &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	})
	return sharedTransport
}

// GetSharedClient returns a client with the given timeout backed by the
// shared pooled transport. A zero timeout means no timeout. Clients are
// cached per timeout value.
func GetSharedClient(timeout time.Duration) *http.Client {
	key := timeout.Milliseconds()

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if elem, ok := cache.byKey[key]; ok {
		cache.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).client
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: sharedRoundTripper(),
	}
	cache.byKey[key] = cache.order.PushFront(&cacheEntry{timeoutKey: key, client: client})
	cache.evictLocked()

	return client
}

func (c *clientCache) evictLocked() {
	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		delete(c.byKey, oldest.Value.(*cacheEntry).timeoutKey)
		c.order.Remove(oldest)
	}
}

// ClearCache drops all cached clients. Mostly useful in tests.
func ClearCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.order.Init()
	cache.byKey = make(map[int64]*list.Element)
}

// CacheSize reports the number of cached clients.
func CacheSize() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.order.Len()
}

// SetMaxCacheSize adjusts the cache bound at runtime, evicting as needed.
func SetMaxCacheSize(size int) {
	if size < 1 {
		size = 1
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.maxSize = size
	cache.evictLocked()
}

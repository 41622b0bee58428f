package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/shrek82/dbquery/core"
)

// MemoryCacheMiddleware caches select results in memory. Add a TTL to
// the context with WithCacheTTL to enable it per call.
type MemoryCacheMiddleware struct {
	items     map[string]memoryCacheEntry
	mu        sync.RWMutex
	stopClean chan struct{}
}

type memoryCacheEntry struct {
	Data      []byte
	ExpiresAt time.Time
}

func NewMemoryCache() *MemoryCacheMiddleware {
	return &MemoryCacheMiddleware{
		items:     make(map[string]memoryCacheEntry),
		stopClean: make(chan struct{}),
	}
}

func (m *MemoryCacheMiddleware) Name() string {
	return "MemoryCache"
}

func (m *MemoryCacheMiddleware) Init(mgr *core.Manager) error {
	go m.cleanupLoop()
	return nil
}

func (m *MemoryCacheMiddleware) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopClean:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *MemoryCacheMiddleware) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, v := range m.items {
		if !v.ExpiresAt.IsZero() && now.After(v.ExpiresAt) {
			delete(m.items, k)
		}
	}
}

func (m *MemoryCacheMiddleware) Shutdown() error {
	close(m.stopClean)
	return nil
}

func (m *MemoryCacheMiddleware) Process(ctx context.Context, inv *core.Invocation, next core.Next) (any, error) {
	ttl, ok := CacheTTL(ctx)
	if !ok || ttl == 0 || !inv.Statement.IsSelect() {
		return next(ctx, inv)
	}

	key := cacheKey(inv)

	m.mu.RLock()
	entry, hit := m.items[key]
	m.mu.RUnlock()
	if hit && (entry.ExpiresAt.IsZero() || time.Now().Before(entry.ExpiresAt)) {
		if rs, ok := decodeResult(entry.Data); ok {
			return rs, nil
		}
	}

	res, err := next(ctx, inv)
	if err != nil {
		return res, err
	}

	if data, ok := encodeResult(res); ok {
		newEntry := memoryCacheEntry{Data: data}
		if ttl > 0 {
			newEntry.ExpiresAt = time.Now().Add(ttl)
		}
		m.mu.Lock()
		m.items[key] = newEntry
		m.mu.Unlock()
	}
	return res, nil
}

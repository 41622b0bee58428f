package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrek82/dbquery/core"
)

// RedisCacheMiddleware caches select results in Redis. Add a TTL to
// the context with WithCacheTTL to enable it per call.
type RedisCacheMiddleware struct {
	Client *redis.Client
}

func NewRedisCache(opt *redis.Options) *RedisCacheMiddleware {
	return &RedisCacheMiddleware{
		Client: redis.NewClient(opt),
	}
}

func (m *RedisCacheMiddleware) Name() string {
	return "RedisCache"
}

func (m *RedisCacheMiddleware) Init(mgr *core.Manager) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Ping(ctx).Err()
}

func (m *RedisCacheMiddleware) Shutdown() error {
	return m.Client.Close()
}

func (m *RedisCacheMiddleware) Process(ctx context.Context, inv *core.Invocation, next core.Next) (any, error) {
	ttl, ok := CacheTTL(ctx)
	if !ok || ttl == 0 || !inv.Statement.IsSelect() {
		return next(ctx, inv)
	}
	if ttl < 0 {
		// Redis uses 0 for "no expiration".
		ttl = 0
	}

	key := cacheKey(inv)

	val, err := m.Client.Get(ctx, key).Bytes()
	if err == nil {
		if rs, ok := decodeResult(val); ok {
			return rs, nil
		}
	}

	res, err := next(ctx, inv)
	if err != nil {
		return res, err
	}

	if data, ok := encodeResult(res); ok {
		m.Client.Set(ctx, key, data, ttl)
	}
	return res, nil
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shrek82/dbquery/core"
)

type cacheTTLKey struct{}

// WithCacheTTL marks the context so cache middlewares store and serve
// the select result for ttl. A ttl of 0 disables caching for the
// call; a negative ttl caches without expiry.
func WithCacheTTL(ctx context.Context, ttl time.Duration) context.Context {
	return context.WithValue(ctx, cacheTTLKey{}, ttl)
}

// CacheTTL reads the TTL set by WithCacheTTL.
func CacheTTL(ctx context.Context) (time.Duration, bool) {
	ttl, ok := ctx.Value(cacheTTLKey{}).(time.Duration)
	return ttl, ok
}

func cacheKey(inv *core.Invocation) string {
	return fmt.Sprintf("dbquery:cache:%s:%v", inv.Statement.SQL(), inv.Args)
}

// encodeResult serializes a select result for caching. Only fully
// materialized results are cacheable.
func encodeResult(res any) ([]byte, bool) {
	rs, ok := res.(*core.ResultSet)
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return nil, false
	}
	return data, true
}

// decodeResult restores a cached select result. Scalar types follow
// the JSON decoder's defaults (numbers come back as float64).
func decodeResult(data []byte) (*core.ResultSet, bool) {
	var rs core.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, false
	}
	return &rs, true
}

// Package fields resolves field ids to server-side field metadata,
// caching resolutions so repeated formatter construction over the
// same field set costs one round trip.
package fields

import (
	"context"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

// DefaultCacheSize bounds the number of distinct field id sets kept.
const DefaultCacheSize = 64

// Resolver resolves field ids through a session dialer with an LRU
// cache in front. Safe for concurrent use.
type Resolver struct {
	dialer transport.Dialer
	cache  *lru.Cache[string, []types.FieldInfo]
	opts   []transport.Option
}

// NewResolver creates a resolver dialing through d. Transport options
// are applied to the resolution queries it issues.
func NewResolver(d transport.Dialer, opts ...transport.Option) (*Resolver, error) {
	cache, err := lru.New[string, []types.FieldInfo](DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{dialer: d, cache: cache, opts: opts}, nil
}

// ResolveFields returns metadata for the given field ids, resolving
// through the server on a cache miss. The returned slice is shared
// with the cache and must not be modified.
func (r *Resolver) ResolveFields(ctx context.Context, ids []query.LogField) ([]types.FieldInfo, error) {
	key := cacheKey(ids)
	if fields, ok := r.cache.Get(key); ok {
		return fields, nil
	}
	fields, err := query.ResolveFieldIDs(ctx, r.dialer, ids, r.opts...)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, fields)
	return fields, nil
}

func cacheKey(ids []query.LogField) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}

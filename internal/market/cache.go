package market

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedSource is a read-through price cache over another Source. Retail
// prices move slowly relative to request volume, so repeated estimates for
// the same region skip the provider entirely within the TTL. Errors and
// zero-result lookups are not cached.
type CachedSource struct {
	origin Source
	prices *expirable.LRU[string, PriceRecord]
}

func NewCachedSource(origin Source, maxEntries int, ttl time.Duration) *CachedSource {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedSource{
		origin: origin,
		prices: expirable.NewLRU[string, PriceRecord](maxEntries, nil, ttl),
	}
}

func (c *CachedSource) LookupPrice(ctx context.Context, material, location string) (*PriceRecord, error) {
	key := cacheKey(material, location)
	if rec, ok := c.prices.Get(key); ok {
		return &rec, nil
	}
	rec, err := c.origin.LookupPrice(ctx, material, location)
	if err != nil || rec == nil {
		return rec, err
	}
	c.prices.Add(key, *rec)
	return rec, nil
}

func cacheKey(material, location string) string {
	return strings.ToLower(strings.TrimSpace(material)) + "|" + strings.ToLower(strings.TrimSpace(location))
}

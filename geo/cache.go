package geo

import (
	"context"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CachedGeocoder wraps a Geocoder with an LRU cache keyed on the
// normalized place query, so repeated lookups of the same city skip
// the network entirely.
type CachedGeocoder struct {
	inner *Geocoder
	cache *lru.Cache[string, Location]
}

// NewCachedGeocoder caches up to size successful lookups.
func NewCachedGeocoder(inner *Geocoder, size int) (*CachedGeocoder, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, Location](size)
	if err != nil {
		return nil, err
	}
	return &CachedGeocoder{inner: inner, cache: cache}, nil
}

// Forward resolves through the cache. Failures and not-found results
// are not cached so transient errors stay retryable.
func (c *CachedGeocoder) Forward(ctx context.Context, city, country string) (Location, error) {
	key := cacheKey(city, country)
	if loc, ok := c.cache.Get(key); ok {
		return loc, nil
	}
	loc, err := c.inner.Forward(ctx, city, country)
	if err != nil {
		return Location{}, err
	}
	c.cache.Add(key, loc)
	return loc, nil
}

// Len reports the number of cached lookups.
func (c *CachedGeocoder) Len() int {
	return c.cache.Len()
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// cacheKey folds case and strips diacritics so "São Paulo" and
// "sao paulo" share an entry.
func cacheKey(city, country string) string {
	query := strings.ToLower(strings.TrimSpace(city) + "|" + strings.TrimSpace(country))
	folded, _, err := transform.String(foldTransformer, query)
	if err != nil {
		return query
	}
	return folded
}

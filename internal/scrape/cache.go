package scrape

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/store"
)

// Cached wraps a LeadScraper with a TTL cache keyed by source and query.
// Cache read and write failures fall through to the live scraper.
type Cached struct {
	inner LeadScraper
	cache store.ScrapeCache
	ttl   time.Duration
}

// NewCached wraps inner. A non-positive ttl disables caching.
func NewCached(inner LeadScraper, cache store.ScrapeCache, ttl time.Duration) LeadScraper {
	if cache == nil || ttl <= 0 {
		return inner
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl}
}

// Name implements LeadScraper.
func (c *Cached) Name() string { return c.inner.Name() }

// Scrape implements LeadScraper.
func (c *Cached) Scrape(ctx context.Context, query string) ([]model.RawLead, error) {
	key := cacheKey(c.inner.Name(), query)
	log := zap.L().With(zap.String("source", c.inner.Name()), zap.String("query", query))

	if data, err := c.cache.GetCachedScrape(ctx, key); err != nil {
		log.Debug("scrape: cache read failed", zap.Error(err))
	} else if data != nil {
		var leads []model.RawLead
		if err := json.Unmarshal(data, &leads); err == nil {
			log.Debug("scrape: cache hit", zap.Int("leads", len(leads)))
			return leads, nil
		}
	}

	leads, err := c.inner.Scrape(ctx, query)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(leads)
	if err == nil {
		err = c.cache.SetCachedScrape(ctx, key, data, c.ttl)
	}
	if err != nil {
		log.Debug("scrape: cache write failed", zap.Error(err))
	}
	return leads, nil
}

func cacheKey(source, query string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

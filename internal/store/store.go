// Package store persists small JSON documents by key, plus a TTL cache for
// scraped pages.
package store

import (
	"context"
	"time"
)

// KV is a key/value document store. Get returns nil, nil for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ScrapeCache caches scraper output by a caller-chosen hash.
type ScrapeCache interface {
	GetCachedScrape(ctx context.Context, hash string) ([]byte, error)
	SetCachedScrape(ctx context.Context, hash string, data []byte, ttl time.Duration) error
	DeleteExpiredScrapes(ctx context.Context) (int, error)
}

// Store is the full persistence surface.
type Store interface {
	KV
	ScrapeCache

	Migrate(ctx context.Context) error
	Close() error
}

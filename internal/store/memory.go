package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Nothing survives the process.
type Memory struct {
	mu     sync.RWMutex
	kv     map[string][]byte
	scrape map[string]cachedScrape
	now    func() time.Time
}

type cachedScrape struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		kv:     make(map[string][]byte),
		scrape: make(map[string]cachedScrape),
		now:    time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *Memory) GetCachedScrape(_ context.Context, hash string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.scrape[hash]
	if !ok || !m.now().Before(c.expiresAt) {
		return nil, nil
	}
	return append([]byte(nil), c.data...), nil
}

func (m *Memory) SetCachedScrape(_ context.Context, hash string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrape[hash] = cachedScrape{data: append([]byte(nil), data...), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) DeleteExpiredScrapes(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	now := m.now()
	for k, c := range m.scrape {
		if !now.Before(c.expiresAt) {
			delete(m.scrape, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Migrate(context.Context) error { return nil }
func (m *Memory) Close() error                  { return nil }

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scrape_cache (
	hash       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at INTEGER NOT NULL -- unix milliseconds
);

CREATE INDEX IF NOT EXISTS idx_scrape_cache_expires_at ON scrape_cache(expires_at);
`

// Migrate creates the tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s", key)
	}
	return value, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put %s", key)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return eris.Wrapf(err, "sqlite: delete %s", key)
}

func (s *SQLiteStore) GetCachedScrape(ctx context.Context, hash string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM scrape_cache WHERE hash = ? AND expires_at > ?`,
		hash, time.Now().UnixMilli(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached scrape")
	}
	return data, nil
}

func (s *SQLiteStore) SetCachedScrape(ctx context.Context, hash string, data []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_cache (hash, data, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		hash, data, now, now.Add(ttl).UnixMilli(),
	)
	return eris.Wrap(err, "sqlite: set cached scrape")
}

func (s *SQLiteStore) DeleteExpiredScrapes(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scrape_cache WHERE expires_at <= ?`, time.Now().UnixMilli())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired scrapes")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

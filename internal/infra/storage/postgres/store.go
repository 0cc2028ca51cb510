package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CacheStore implements the durable store contract on the cache_entries
// table. The cache still expires on its own envelope timestamp; saved_at is
// kept for operator visibility only.
type CacheStore struct {
	db *DB
}

// NewCacheStore creates a PostgreSQL-backed durable store.
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

// Load implements cache.Store.
func (s *CacheStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM cache_entries WHERE key = $1`, key,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cache entry: %w", err)
	}
	return blob, true, nil
}

// Save implements cache.Store.
func (s *CacheStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, data, saved_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, saved_at = EXCLUDED.saved_at`,
		key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}

// Clear implements cache.Store.
func (s *CacheStore) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to clear cache entry: %w", err)
	}
	return nil
}

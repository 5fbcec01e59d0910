package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan/sqlite"
)

// PersistentCache wraps a Cache with best-effort SQLite persistence. Every
// failure path degrades to memory-only operation: Load and Flush log and
// return rather than propagating storage errors.
type PersistentCache struct {
	*Cache
	db     *sqlite.DB
	logger *slog.Logger
}

// NewPersistent creates a cache backed by db. The caller is expected to call
// Load once after opening the database and Flush before closing it.
func NewPersistent(maxEntries int, maxBytes int64, db *sqlite.DB, logger *slog.Logger, opts ...Option) *PersistentCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistentCache{
		Cache:  New(maxEntries, maxBytes, opts...),
		db:     db,
		logger: logger,
	}
}

// Load restores persisted entries into memory. Best effort: on any error the
// cache simply starts empty.
func (p *PersistentCache) Load(ctx context.Context) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT key, value, last_access_at, access_count FROM cache_entries
	`)
	if err != nil {
		p.logger.Debug("cache load failed, starting empty", "err", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, lastAccess string
		var value []byte
		var accessCount int64
		if err := rows.Scan(&key, &value, &lastAccess, &accessCount); err != nil {
			p.logger.Debug("cache row scan failed, skipping", "err", err)
			continue
		}
		ts, err := time.Parse(time.RFC3339, lastAccess)
		if err != nil {
			ts = time.Now().UTC()
		}

		p.mu.Lock()
		if _, exists := p.entries[key]; !exists {
			p.entries[key] = &entry{
				key:          key,
				value:        value,
				lastAccessAt: ts,
				accessCount:  accessCount,
			}
			p.sizeBytes += int64(len(value))
			p.evictLocked()
		}
		p.mu.Unlock()
	}
}

// Flush writes the live entries back to the database. Best effort: errors
// are logged and the in-memory state stays authoritative for the run.
func (p *PersistentCache) Flush(ctx context.Context) {
	p.mu.Lock()
	snapshot := make([]entry, 0, len(p.entries))
	for _, e := range p.entries {
		snapshot = append(snapshot, *e)
	}
	p.mu.Unlock()

	if _, err := p.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		p.logger.Debug("cache flush failed", "err", err)
		return
	}
	for _, e := range snapshot {
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO cache_entries (key, value, size_bytes, last_access_at, access_count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				size_bytes = excluded.size_bytes,
				last_access_at = excluded.last_access_at,
				access_count = excluded.access_count
		`, e.key, e.value, int64(len(e.value)),
			e.lastAccessAt.UTC().Format(time.RFC3339), e.accessCount)
		if err != nil {
			p.logger.Debug("cache entry flush failed", "err", err)
			return
		}
	}
}

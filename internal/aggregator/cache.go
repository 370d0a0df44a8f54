package aggregator

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ddonindia/lodestarr/internal/metrics"
	"github.com/ddonindia/lodestarr/internal/result"
)

// Cache is a SQLite-backed TTL store for serialized search results, keyed
// by Fingerprint. A miss or an expired entry is treated identically by
// callers: both mean "go run the search".
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

func NewCache(db *sql.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl}
}

func (c *Cache) Get(key string) ([]result.TorrentResult, bool) {
	if c.db == nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	var blob []byte
	var expiresAt int64
	err := c.db.QueryRow(`SELECT results, expires_at FROM search_cache WHERE key = ?`, key).Scan(&blob, &expiresAt)
	if err == sql.ErrNoRows {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("search cache lookup failed")
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if time.Now().Unix() > expiresAt {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	var results []result.TorrentResult
	if err := json.Unmarshal(blob, &results); err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return results, true
}

func (c *Cache) Set(key string, results []result.TorrentResult) {
	if c.db == nil {
		return
	}
	blob, err := json.Marshal(results)
	if err != nil {
		return
	}
	expiresAt := time.Now().Add(c.ttl).Unix()
	_, err = c.db.Exec(`
		INSERT INTO search_cache (key, results, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			results = excluded.results,
			expires_at = excluded.expires_at
	`, key, blob, expiresAt)
	if err != nil {
		log.Warn().Err(err).Msg("search cache store failed")
	}
}

// Sweep removes expired entries. New runs it once at startup.
func (c *Cache) Sweep() {
	if c.db == nil {
		return
	}
	if _, err := c.db.Exec(`DELETE FROM search_cache WHERE expires_at < ?`, time.Now().Unix()); err != nil {
		log.Warn().Err(err).Msg("search cache sweep failed")
	}
}

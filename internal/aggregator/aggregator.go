// Package aggregator fans a search out across enabled indexers in
// bounded-concurrency parallel, merges and deduplicates the results,
// sorts by seeders, and caches serialized responses keyed by fingerprint.
package aggregator

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ddonindia/lodestarr/internal/metrics"
	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/result"
)

// Options controls fan-out width, cache lifetime, and the truncation
// limit applied to merged results.
type Options struct {
	MaxConcurrency int64
	CacheTTL       time.Duration
	ResultLimit    int
}

func (o Options) concurrency() int64 {
	if o.MaxConcurrency <= 0 {
		return 4
	}
	return o.MaxConcurrency
}

func (o Options) limit() int {
	if o.ResultLimit <= 0 {
		return 100
	}
	return o.ResultLimit
}

// Aggregator ties a set of native and proxied sources to a result cache.
type Aggregator struct {
	sources []Source
	cache   *Cache
	opts    Options
}

// New constructs an Aggregator. db may be nil, in which case caching is
// disabled and every search hits the sources directly.
func New(db *sql.DB, opts Options) *Aggregator {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cache := NewCache(db, ttl)
	cache.Sweep()
	return &Aggregator{cache: cache, opts: opts}
}

// SetSources replaces the set of sources dispatched to on every search.
// Called whenever the definition registry or proxied-indexer list changes.
func (a *Aggregator) SetSources(sources []Source) {
	a.sources = sources
}

// Search fans q out to every configured source, merges and deduplicates
// the results, serves from cache when a fresh entry exists, and applies
// q's limit/offset to the merged set before returning.
func (a *Aggregator) Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult {
	key := Fingerprint("aggregate", "all", q)
	merged, ok := a.cache.Get(key)
	if !ok {
		raw := dispatch(ctx, a.sources, q, a.opts.concurrency())
		merged = Merge(raw, a.opts.limit())
		metrics.AggregateResultCount.Observe(float64(len(merged)))
		if len(merged) > 0 {
			a.cache.Set(key, merged)
		}
	}
	return Paginate(merged, q.Limit, q.Offset)
}

// SearchOne fans q out to a single named source, bypassing the aggregate
// cache key (used by per-indexer "test" and "local search" endpoints).
func (a *Aggregator) SearchOne(ctx context.Context, indexerID string, q query.SearchQuery) []result.TorrentResult {
	for _, src := range a.sources {
		if src.ID() != indexerID {
			continue
		}
		key := Fingerprint(src.Kind(), src.ID(), q)
		merged, ok := a.cache.Get(key)
		if !ok {
			out := searchSource(ctx, src, q)
			merged = Merge(out, a.opts.limit())
			if len(merged) > 0 {
				a.cache.Set(key, merged)
			}
		}
		return Paginate(merged, q.Limit, q.Offset)
	}
	log.Warn().Str("indexer", indexerID).Msg("search requested for unknown indexer")
	return nil
}

// Sources returns the currently configured sources, for listing/status
// endpoints.
func (a *Aggregator) Sources() []Source {
	return a.sources
}

package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ddonindia/lodestarr/internal/metrics"
	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/result"
)

// dispatch runs q against every source concurrently, bounded by weight
// simultaneous searches. A source that errors or panics is logged and
// excluded from the merged result, never failing the whole search.
func dispatch(ctx context.Context, sources []Source, q query.SearchQuery, weight int64) []result.TorrentResult {
	if weight <= 0 {
		weight = 4
	}
	sem := semaphore.NewWeighted(weight)

	var mu sync.Mutex
	var all []result.TorrentResult

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			out := searchSource(gctx, src, q)

			mu.Lock()
			all = append(all, out...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return all
}

// searchSource isolates one source's failure (including a panic inside a
// misbehaving executor) from the rest of the fan-out.
func searchSource(ctx context.Context, src Source, q query.SearchQuery) (out []result.TorrentResult) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("source", src.ID()).Interface("panic", r).Msg("indexer source panicked during search")
			outcome = "panic"
			out = nil
		}
		metrics.IndexerSearchDuration.WithLabelValues(src.ID(), src.Kind()).Observe(time.Since(start).Seconds())
		metrics.IndexerSearchTotal.WithLabelValues(src.ID(), outcome).Inc()
	}()
	return src.Search(ctx, q)
}

package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moistari/rls"

	"github.com/ddonindia/lodestarr/internal/result"
)

// releaseSignature groups results that describe the same underlying
// release even when their titles differ cosmetically across indexers.
func releaseSignature(r result.TorrentResult) string {
	if r.InfoHash != "" {
		return "hash:" + strings.ToLower(r.InfoHash)
	}

	rel := rls.ParseString(r.Title)
	title := strings.ToLower(strings.TrimSpace(rel.Title))

	switch {
	case rel.Series > 0 && rel.Episode > 0:
		return fmt.Sprintf("tv:%s:%d:%d", title, rel.Series, rel.Episode)
	case rel.Series > 0:
		return fmt.Sprintf("season:%s:%d", title, rel.Series)
	case rel.Year > 0:
		return fmt.Sprintf("year:%s:%d:%s:%s", title, rel.Year, strings.ToLower(rel.Resolution), strings.ToLower(rel.Source))
	default:
		return "title:" + title
	}
}

// Merge deduplicates results by release signature, keeping the entry with
// the most seeders out of each group, then sorts the survivors by seeders
// descending and truncates to limit.
func Merge(results []result.TorrentResult, limit int) []result.TorrentResult {
	best := make(map[string]result.TorrentResult)
	order := make([]string, 0, len(results))

	for _, r := range results {
		sig := releaseSignature(r)
		existing, ok := best[sig]
		if !ok {
			order = append(order, sig)
			best[sig] = r
			continue
		}
		if r.Seeders > existing.Seeders {
			best[sig] = r
		}
	}

	merged := make([]result.TorrentResult, 0, len(order))
	for _, sig := range order {
		merged = append(merged, best[sig])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Seeders > merged[j].Seeders
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Paginate applies the caller's offset/limit on top of an already-merged
// result set. A non-positive limit means "no additional cap beyond what
// Merge already truncated to".
func Paginate(results []result.TorrentResult, limit, offset int) []result.TorrentResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []result.TorrentResult{}
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

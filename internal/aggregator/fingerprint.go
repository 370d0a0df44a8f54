package aggregator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ddonindia/lodestarr/internal/query"
)

// Fingerprint computes the deterministic cache key for a query scoped to
// one indexer (or the "all" pseudo-indexer for an aggregate fingerprint).
func Fingerprint(kind, indexerID string, q query.SearchQuery) string {
	cats := make([]string, len(q.Categories))
	for i, c := range q.Categories {
		cats[i] = strconv.Itoa(c)
	}
	sort.Strings(cats)
	return fmt.Sprintf("%s:%s:%s:%s", kind, indexerID, q.Keywords, strings.Join(cats, ","))
}

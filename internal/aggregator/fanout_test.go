package aggregator

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/result"
)

type fakeSource struct {
	id      string
	kind    string
	results []result.TorrentResult
	panics  bool
}

func (f fakeSource) ID() string   { return f.id }
func (f fakeSource) Kind() string { return f.kind }

func (f fakeSource) Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult {
	if f.panics {
		panic("boom")
	}
	return f.results
}

func TestDispatch_MergesAllSourceResults(t *testing.T) {
	sources := []Source{
		fakeSource{id: "a", kind: "native", results: []result.TorrentResult{{Title: "A"}}},
		fakeSource{id: "b", kind: "native", results: []result.TorrentResult{{Title: "B"}, {Title: "C"}}},
	}

	out := dispatch(context.Background(), sources, query.SearchQuery{Keywords: "x"}, 4)
	if len(out) != 3 {
		t.Fatalf("expected 3 combined results, got %d", len(out))
	}
}

func TestDispatch_IsolatesPanickingSource(t *testing.T) {
	sources := []Source{
		fakeSource{id: "ok", kind: "native", results: []result.TorrentResult{{Title: "fine"}}},
		fakeSource{id: "bad", kind: "native", panics: true},
	}

	out := dispatch(context.Background(), sources, query.SearchQuery{Keywords: "x"}, 4)
	if len(out) != 1 {
		t.Fatalf("expected the panicking source's results to be dropped, got %d results", len(out))
	}
	if out[0].Title != "fine" {
		t.Errorf("expected the surviving source's result, got %q", out[0].Title)
	}
}

func TestDispatch_ZeroWeightDefaultsToBounded(t *testing.T) {
	var concurrent int32
	var maxObserved int32
	sources := make([]Source, 0, 8)
	for i := 0; i < 8; i++ {
		sources = append(sources, countingSource{inc: &concurrent, max: &maxObserved})
	}

	dispatch(context.Background(), sources, query.SearchQuery{}, 0)

	if maxObserved > 4 {
		t.Errorf("expected concurrency bounded to the default of 4, observed %d", maxObserved)
	}
}

type countingSource struct {
	inc *int32
	max *int32
}

func (c countingSource) ID() string   { return "counting" }
func (c countingSource) Kind() string { return "native" }

func (c countingSource) Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult {
	n := atomic.AddInt32(c.inc, 1)
	for {
		cur := atomic.LoadInt32(c.max)
		if n <= cur || atomic.CompareAndSwapInt32(c.max, cur, n) {
			break
		}
	}
	atomic.AddInt32(c.inc, -1)
	return nil
}

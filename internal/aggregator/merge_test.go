package aggregator

import (
	"testing"
	"time"

	"github.com/ddonindia/lodestarr/internal/result"
)

func TestMerge_DedupesByInfoHash(t *testing.T) {
	results := []result.TorrentResult{
		{Title: "Example.Movie.2020.1080p.BluRay.x264", InfoHash: "ABCD1234", Seeders: 5, Indexer: "a"},
		{Title: "Example Movie 2020 1080p BluRay x264", InfoHash: "abcd1234", Seeders: 50, Indexer: "b"},
	}

	merged := Merge(results, 0)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged result, got %d", len(merged))
	}
	if merged[0].Seeders != 50 {
		t.Errorf("expected the higher-seeder duplicate to survive, got seeders=%d", merged[0].Seeders)
	}
}

func TestMerge_DedupesByReleaseSignatureWithoutHash(t *testing.T) {
	results := []result.TorrentResult{
		{Title: "Show.Name.S01E02.720p.WEB.x264", Seeders: 10, Indexer: "a"},
		{Title: "Show.Name.S01E02.1080p.WEB.x264", Seeders: 3, Indexer: "b"},
		{Title: "Show.Name.S01E03.720p.WEB.x264", Seeders: 1, Indexer: "a"},
	}

	merged := Merge(results, 0)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged results (distinct episodes), got %d", len(merged))
	}
	if merged[0].Seeders != 10 {
		t.Errorf("expected the first group's highest-seeder entry first, got seeders=%d", merged[0].Seeders)
	}
}

func TestMerge_SortsBySeedersDescending(t *testing.T) {
	results := []result.TorrentResult{
		{Title: "One", InfoHash: "1111", Seeders: 1},
		{Title: "Two", InfoHash: "2222", Seeders: 100},
		{Title: "Three", InfoHash: "3333", Seeders: 50},
	}

	merged := Merge(results, 0)
	if len(merged) != 3 {
		t.Fatalf("expected 3 results, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i-1].Seeders < merged[i].Seeders {
			t.Errorf("results not sorted by seeders descending: %+v", merged)
		}
	}
}

func TestMerge_TruncatesToLimit(t *testing.T) {
	var results []result.TorrentResult
	for i := 0; i < 10; i++ {
		results = append(results, result.TorrentResult{
			Title:       "Item",
			InfoHash:    string(rune('a' + i)),
			Seeders:     i,
			PublishDate: time.Now(),
		})
	}

	merged := Merge(results, 3)
	if len(merged) != 3 {
		t.Fatalf("expected results truncated to 3, got %d", len(merged))
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	merged := Merge(nil, 10)
	if len(merged) != 0 {
		t.Errorf("expected no results for empty input, got %d", len(merged))
	}
}

func TestPaginate_OffsetAndLimit(t *testing.T) {
	var results []result.TorrentResult
	for i := 0; i < 10; i++ {
		results = append(results, result.TorrentResult{Title: "Item", Seeders: i})
	}

	page := Paginate(results, 3, 5)
	if len(page) != 3 {
		t.Fatalf("expected 3 results, got %d", len(page))
	}
	if page[0].Seeders != 5 {
		t.Errorf("expected page to start at offset 5, got seeders=%d", page[0].Seeders)
	}
}

func TestPaginate_OffsetPastEndYieldsEmpty(t *testing.T) {
	results := []result.TorrentResult{{Title: "Item"}}
	if page := Paginate(results, 10, 5); len(page) != 0 {
		t.Errorf("expected empty page for out-of-range offset, got %d", len(page))
	}
}

func TestPaginate_NonPositiveLimitKeepsRemainder(t *testing.T) {
	results := []result.TorrentResult{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	if page := Paginate(results, 0, 1); len(page) != 2 {
		t.Errorf("expected remaining 2 results with no limit cap, got %d", len(page))
	}
}

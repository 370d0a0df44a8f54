package torznab

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/ddonindia/lodestarr/internal/result"
)

func TestNewSearchResponse_MagnetLinkUsedDirectly(t *testing.T) {
	results := []result.TorrentResult{
		{
			Title:       "Example.Release.2020",
			Magnet:      "magnet:?xt=urn:btih:abcd1234",
			Seeders:     10,
			Leechers:    2,
			Categories:  []int{2000},
			PublishDate: time.Now(),
			Indexer:     "test-indexer",
		},
	}

	resp := NewSearchResponse("http://localhost:9999", results, 0, 1)
	if len(resp.Channel.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Channel.Items))
	}
	item := resp.Channel.Items[0]
	if item.Link != "magnet:?xt=urn:btih:abcd1234" {
		t.Errorf("expected the magnet link to be used as-is, got %q", item.Link)
	}
	if item.Enclosure == nil || item.Enclosure.URL != item.Link {
		t.Error("expected the enclosure URL to match the item link")
	}
}

func TestNewSearchResponse_NonMagnetRoutedThroughDownloadProxy(t *testing.T) {
	results := []result.TorrentResult{
		{
			Title:   "Example.Release.2020",
			Link:    "https://tracker.example/download/123",
			Indexer: "test-indexer",
		},
	}

	resp := NewSearchResponse("http://localhost:9999", results, 0, 1)
	link := resp.Channel.Items[0].Link

	if !strings.HasPrefix(link, "http://localhost:9999/api/v2.0/indexers/test-indexer/dl?link=") {
		t.Errorf("expected link routed through /dl, got %q", link)
	}
}

func TestNewSearchResponse_AttributesIncludeSeedersAndLeechers(t *testing.T) {
	results := []result.TorrentResult{
		{
			Title:    "Example",
			Magnet:   "magnet:?xt=urn:btih:abcd",
			Seeders:  7,
			Leechers: 3,
		},
	}

	resp := NewSearchResponse("http://localhost", results, 0, 1)
	attrs := map[string]string{}
	for _, a := range resp.Channel.Items[0].Attributes {
		attrs[a.Name] = a.Value
	}
	if attrs["seeders"] != "7" {
		t.Errorf("expected seeders attr 7, got %q", attrs["seeders"])
	}
	if attrs["leechers"] != "3" {
		t.Errorf("expected leechers attr 3, got %q", attrs["leechers"])
	}
	if attrs["peers"] != "10" {
		t.Errorf("expected peers attr to be seeders+leechers=10, got %q", attrs["peers"])
	}
}

func TestParseSearchResponse_RoundTripsWhatNewSearchResponseProduces(t *testing.T) {
	results := []result.TorrentResult{
		{
			Title:       "Example.Release.2020",
			Magnet:      "magnet:?xt=urn:btih:abcd1234",
			Size:        12345,
			Seeders:     10,
			Leechers:    2,
			Categories:  []int{2000},
			PublishDate: time.Now().Truncate(time.Second),
			IMDBID:      "tt1234567",
		},
	}

	rss := NewSearchResponse("http://localhost:9999", results, 0, 1)
	body, err := xml.Marshal(rss)
	if err != nil {
		t.Fatalf("marshal rss: %v", err)
	}

	parsed, err := ParseSearchResponse(body)
	if err != nil {
		t.Fatalf("ParseSearchResponse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("expected 1 parsed result, got %d", len(parsed))
	}
	got := parsed[0]
	if got.Title != "Example.Release.2020" {
		t.Errorf("title mismatch: %q", got.Title)
	}
	if got.Seeders != 10 || got.Leechers != 2 {
		t.Errorf("seeders/leechers mismatch: %d/%d", got.Seeders, got.Leechers)
	}
	if got.Magnet != "magnet:?xt=urn:btih:abcd1234" {
		t.Errorf("magnet mismatch: %q", got.Magnet)
	}
	if got.IMDBID != "tt1234567" {
		t.Errorf("imdbid mismatch: %q", got.IMDBID)
	}
}

func TestParseSearchResponse_InvalidXML(t *testing.T) {
	if _, err := ParseSearchResponse([]byte("not xml")); err == nil {
		t.Error("expected an error for malformed XML input")
	}
}

func TestDownloadProxyPath_EmptyLinkYieldsEmptyPath(t *testing.T) {
	if got := downloadProxyPath("http://localhost", "idx", ""); got != "" {
		t.Errorf("expected empty path for empty link, got %q", got)
	}
}

package aggregator

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/result"
	"github.com/ddonindia/lodestarr/internal/torznab"
)

// Source is one thing the aggregator can fan a query out to: a native
// definition-backed executor or a proxied remote Torznab server.
type Source interface {
	ID() string
	Kind() string
	Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult
}

// NativeExecutor is the subset of *executor.Executor the aggregator
// depends on, kept as an interface so the aggregator package does not
// import executor directly (avoiding an import cycle with definition).
type NativeExecutor interface {
	Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult
}

// NativeSource adapts a definition-backed executor to Source.
type NativeSource struct {
	IndexerID string
	Exec      NativeExecutor
}

func (s NativeSource) ID() string   { return s.IndexerID }
func (s NativeSource) Kind() string { return "native" }

func (s NativeSource) Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult {
	return s.Exec.Search(ctx, q)
}

// ProxiedSource issues a Torznab t=search request against another
// Torznab-compatible server and maps its RSS items back into
// TorrentResult, treating the remote as a peer aggregate source.
type ProxiedSource struct {
	IndexerID string
	BaseURL   string
	APIKey    string
	Client    *http.Client
}

func (s ProxiedSource) ID() string   { return s.IndexerID }
func (s ProxiedSource) Kind() string { return "proxied" }

func (s ProxiedSource) Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil
	}
	qv := u.Query()
	qv.Set("t", string(q.Mode))
	qv.Set("apikey", s.APIKey)
	qv.Set("q", q.Keywords)
	u.RawQuery = qv.Encode()

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	items, err := torznab.ParseSearchResponse(body)
	if err != nil {
		return nil
	}

	out := make([]result.TorrentResult, 0, len(items))
	for _, it := range items {
		out = append(out, it)
		out[len(out)-1].Indexer = s.IndexerID
	}
	return out
}

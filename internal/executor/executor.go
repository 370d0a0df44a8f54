package executor

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/filter"
	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/result"
	"github.com/ddonindia/lodestarr/internal/template"
)

// Executor performs the HTTP side of one indexer's search and download
// operations. Cheap to construct; recreated whenever proxy settings
// change (it owns its own cookie jar, never shared outside itself).
type Executor struct {
	def       *definition.IndexerDefinition
	client    *http.Client
	opts      Options
	overrides map[string]string
	preflight sync.Once
}

// New constructs an executor for def. overrides holds user-configured
// setting values keyed by Setting.Name.
func New(def *definition.IndexerDefinition, opts Options, overrides map[string]string) (*Executor, error) {
	client, err := newHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("executor: build http client: %w", err)
	}
	return &Executor{def: def, client: client, opts: opts, overrides: overrides}, nil
}

func (e *Executor) baseContext(q query.SearchQuery) *template.Context {
	ctx := template.NewContext()
	ctx.Query = q.ToMap()
	for _, s := range e.def.Settings {
		ctx.Config[s.Name] = s.Default
	}
	for k, v := range e.overrides {
		ctx.Config[k] = v
	}
	return ctx
}

// Preflight opportunistically seeds the cookie jar by GETting the
// canonical base URL. Failure here is never fatal.
func (e *Executor) Preflight(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.def.CanonicalBase(), nil)
	if err != nil {
		return
	}
	setBrowserHeaders(req, e.opts.userAgent())
	resp, err := e.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("indexer", e.def.ID).Msg("preflight request failed")
		return
	}
	resp.Body.Close()
}

// Search executes every matching search path in declared order and
// returns the union of their results. Per-path failures are logged and
// skipped; the method itself never returns an error.
func (e *Executor) Search(ctx context.Context, q query.SearchQuery) []result.TorrentResult {
	if e.def.Login != nil {
		e.preflight.Do(func() { e.Preflight(ctx) })
	}

	paths := selectPaths(e.def.Search.Paths, q.Categories)

	keywords := q.Keywords
	keywords = filter.Apply(keywords, toExecFilters(e.def.Search.KeywordsFilters, e.baseContext(q)))

	var all []result.TorrentResult
	for _, p := range paths {
		tctx := e.baseContext(q)
		tctx.Query["Keywords"] = keywords
		tctx.Query["Q"] = keywords

		results, err := e.searchPath(ctx, p, q, tctx)
		if err != nil {
			log.Warn().Err(err).Str("indexer", e.def.ID).Str("path", p.Path).Str("query", keywords).Msg("indexer search path failed")
			continue
		}
		all = append(all, results...)
	}
	return all
}

// toExecFilters converts definition-declared filters to filter.Filter,
// template-rendering each argument against ctx first so a filter arg like
// "{{ .Query.Today.Year }}" resolves before the filter runs.
func toExecFilters(defs []definition.FilterDef, ctx *template.Context) []filter.Filter {
	out := make([]filter.Filter, len(defs))
	for i, d := range defs {
		args := make([]string, len(d.Args))
		for j, a := range d.Args {
			if template.IsTemplate(a) {
				args[j] = template.Render(a, ctx)
			} else {
				args[j] = a
			}
		}
		out[i] = filter.Filter{Name: d.Name, Args: args}
	}
	return out
}

func (e *Executor) searchPath(ctx context.Context, p definition.SearchPath, q query.SearchQuery, tctx *template.Context) ([]result.TorrentResult, error) {
	req, err := e.buildRequest(p, q, tctx)
	if err != nil {
		return nil, newError(KindConfiguration, p.Path, err)
	}
	req = req.WithContext(ctx)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, p.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(KindProtocol, p.Path, fmt.Errorf("http status %d", resp.StatusCode))
	}

	return e.parseResponse(resp, p, tctx)
}

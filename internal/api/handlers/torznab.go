package handlers

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ddonindia/lodestarr/internal/aggregator"
	"github.com/ddonindia/lodestarr/internal/config"
	"github.com/ddonindia/lodestarr/internal/database"
	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/result"
	"github.com/ddonindia/lodestarr/internal/torznab"
)

// aggregatorService is the shared fan-out/cache/merge engine, set by
// main.go once the definition registry and executors are wired up.
var aggregatorService *aggregator.Aggregator

// SetAggregator installs the aggregator used by the Torznab and native
// indexer endpoints.
func SetAggregator(a *aggregator.Aggregator) {
	aggregatorService = a
}

// Torznab handles all Torznab API requests
func Torznab(w http.ResponseWriter, r *http.Request) {
	cfg := config.Get()
	apiKey := r.URL.Query().Get("apikey")

	if cfg.Server.APIKey != "" && apiKey != cfg.Server.APIKey {
		respondTorznabError(w, torznab.ErrorIncorrectUserCreds, "Invalid API key")
		return
	}

	// id is either a loaded indexer's ID or "all" to fan out to every
	// configured source; chi's {id} segment is never empty here.
	id := chi.URLParam(r, "id")

	t := r.URL.Query().Get("t")

	switch t {
	case "caps":
		handleCaps(w, r)
	case "search":
		handleSearch(w, r, id)
	case "tvsearch":
		handleTVSearch(w, r, id)
	case "movie":
		handleMovieSearch(w, r, id)
	case "music":
		handleMusicSearch(w, r, id)
	case "book":
		handleBookSearch(w, r, id)
	default:
		respondTorznabError(w, torznab.ErrorNoFunction, "Unknown function")
	}
}

func handleCaps(w http.ResponseWriter, r *http.Request) {
	baseURL := getBaseURL(r)
	caps := torznab.NewCaps(baseURL)

	w.Header().Set("Content-Type", "application/xml")
	xml.NewEncoder(w).Encode(caps)
}

func handleSearch(w http.ResponseWriter, r *http.Request, id string) {
	params := parseSearchParams(r)
	params.Mode = "search"
	executeSearch(w, r, id, params)
}

func handleTVSearch(w http.ResponseWriter, r *http.Request, id string) {
	params := parseSearchParams(r)
	params.Mode = "tvsearch"

	if len(params.Categories) == 0 {
		params.Categories = []int{torznab.CategoryTV}
	}
	if s := r.URL.Query().Get("season"); s != "" {
		params.Season, _ = strconv.Atoi(s)
	}
	if e := r.URL.Query().Get("ep"); e != "" {
		params.Episode = e
	}

	executeSearch(w, r, id, params)
}

func handleMovieSearch(w http.ResponseWriter, r *http.Request, id string) {
	params := parseSearchParams(r)
	params.Mode = "movie"

	if len(params.Categories) == 0 {
		params.Categories = []int{torznab.CategoryMovies}
	}
	if imdb := r.URL.Query().Get("imdbid"); imdb != "" {
		params.ImdbID = torznab.NormalizeImdbID(imdb)
	}
	if tmdb := r.URL.Query().Get("tmdbid"); tmdb != "" {
		params.TmdbID = tmdb
	}

	executeSearch(w, r, id, params)
}

func handleMusicSearch(w http.ResponseWriter, r *http.Request, id string) {
	params := parseSearchParams(r)
	params.Mode = "music"

	if len(params.Categories) == 0 {
		params.Categories = []int{torznab.CategoryAudio}
	}
	if artist := r.URL.Query().Get("artist"); artist != "" {
		params.Query = appendTerm(params.Query, artist)
	}
	if album := r.URL.Query().Get("album"); album != "" {
		params.Query = appendTerm(params.Query, album)
	}

	executeSearch(w, r, id, params)
}

func handleBookSearch(w http.ResponseWriter, r *http.Request, id string) {
	params := parseSearchParams(r)
	params.Mode = "book"

	if len(params.Categories) == 0 {
		params.Categories = []int{torznab.CategoryBooks}
	}
	if author := r.URL.Query().Get("author"); author != "" {
		params.Query = appendTerm(params.Query, author)
	}
	if title := r.URL.Query().Get("title"); title != "" {
		params.Query = appendTerm(params.Query, title)
	}

	executeSearch(w, r, id, params)
}

func appendTerm(query, term string) string {
	if query == "" {
		return term
	}
	return query + " " + term
}

// parseSearchParams parses common search parameters
func parseSearchParams(r *http.Request) torznab.SearchParams {
	params := torznab.SearchParams{
		Query:  r.URL.Query().Get("q"),
		Limit:  100,
		Offset: 0,
	}

	if cat := r.URL.Query().Get("cat"); cat != "" {
		params.Categories = torznab.ParseCategories(cat)
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			params.Offset = o
		}
	}

	return params
}

// executeSearch fans params out via the aggregator - to every configured
// source when id is "all", or to a single indexer when id names one -
// and renders the merged results as a Torznab RSS feed.
func executeSearch(w http.ResponseWriter, r *http.Request, id string, params torznab.SearchParams) {
	if aggregatorService == nil {
		respondTorznabError(w, torznab.ErrorRequestLimitReached, "Aggregator not initialized")
		return
	}

	q := query.SearchQuery{
		Mode:       query.Mode(params.Mode),
		Keywords:   params.Query,
		Categories: params.Categories,
		Limit:      params.Limit,
		Offset:     params.Offset,
		IMDBID:     params.ImdbID,
		TMDBID:     params.TmdbID,
		Season:     params.Season,
		Episode:    params.Episode,
	}

	start := time.Now()
	var results []result.TorrentResult
	if id == "" || id == "all" {
		results = aggregatorService.Search(r.Context(), q)
	} else {
		results = aggregatorService.SearchOne(r.Context(), id, q)
	}
	database.LogSearch(id, params.Mode, params.Query, len(results), time.Since(start).Milliseconds(), "")

	baseURL := getBaseURL(r)
	rss := torznab.NewSearchResponse(baseURL, results, params.Offset, len(results))

	w.Header().Set("Content-Type", "application/xml")
	xml.NewEncoder(w).Encode(rss)
}

// respondTorznabError sends a Torznab error response
func respondTorznabError(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	xml.NewEncoder(w).Encode(torznab.NewErrorResponse(code, description))
}

// getBaseURL constructs the base URL from the request
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwdProto := r.Header.Get("X-Forwarded-Proto"); fwdProto != "" {
		scheme = fwdProto
	}

	host := r.Host
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = fwdHost
	}

	return scheme + "://" + host
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ddonindia/lodestarr/internal/config"
	"github.com/ddonindia/lodestarr/internal/query"
)

// rebuildSources is called after any proxied-indexer CRUD operation so
// the aggregator's source list picks up the change. Installed by main.go.
var rebuildSources func()

// SetSourceRebuilder installs the callback that resyncs the aggregator's
// source list from the current config and registry.
func SetSourceRebuilder(fn func()) {
	rebuildSources = fn
}

// ListProxiedIndexers returns the configured remote Torznab servers
// proxied as peer aggregate sources.
func ListProxiedIndexers(w http.ResponseWriter, r *http.Request) {
	cfg := config.Get()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"proxied": cfg.Definitions.Proxied,
		"total":   len(cfg.Definitions.Proxied),
	})
}

// AddProxiedIndexer registers a new remote Torznab server as a peer
// source.
func AddProxiedIndexer(w http.ResponseWriter, r *http.Request) {
	var entry config.ProxiedIndexer
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if entry.ID == "" || entry.BaseURL == "" {
		respondError(w, http.StatusBadRequest, "id and base_url are required")
		return
	}
	entry.Enabled = true

	cfg := config.Get()
	proxied := append(cfg.Definitions.Proxied, entry)

	if err := config.Update("definitions.proxied", proxied); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save proxied indexer")
		return
	}
	if rebuildSources != nil {
		rebuildSources()
	}

	respondJSON(w, http.StatusCreated, entry)
}

// UpdateProxiedIndexer updates an existing proxied indexer entry (name,
// base_url, api_key, enabled).
func UpdateProxiedIndexer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "ID is required")
		return
	}

	var req config.ProxiedIndexer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg := config.Get()
	found := false
	updated := make([]config.ProxiedIndexer, len(cfg.Definitions.Proxied))
	for i, p := range cfg.Definitions.Proxied {
		if p.ID == id {
			found = true
			if req.Name != "" {
				p.Name = req.Name
			}
			if req.BaseURL != "" {
				p.BaseURL = req.BaseURL
			}
			if req.APIKey != "" {
				p.APIKey = req.APIKey
			}
			p.Enabled = req.Enabled
		}
		updated[i] = p
	}
	if !found {
		respondError(w, http.StatusNotFound, "Proxied indexer not found")
		return
	}

	if err := config.Update("definitions.proxied", updated); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update proxied indexer")
		return
	}
	if rebuildSources != nil {
		rebuildSources()
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteProxiedIndexer removes a proxied indexer entry.
func DeleteProxiedIndexer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "ID is required")
		return
	}

	cfg := config.Get()
	remaining := make([]config.ProxiedIndexer, 0, len(cfg.Definitions.Proxied))
	for _, p := range cfg.Definitions.Proxied {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(cfg.Definitions.Proxied) {
		respondError(w, http.StatusNotFound, "Proxied indexer not found")
		return
	}

	if err := config.Update("definitions.proxied", remaining); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete proxied indexer")
		return
	}
	if rebuildSources != nil {
		rebuildSources()
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TestProxiedIndexer runs a canned query against one proxied source and
// reports whether any result came back.
func TestProxiedIndexer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "ID is required")
		return
	}
	if aggregatorService == nil {
		respondError(w, http.StatusInternalServerError, "Aggregator not initialized")
		return
	}

	results := aggregatorService.SearchOne(r.Context(), id, query.SearchQuery{Mode: query.ModeSearch, Keywords: "test"})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"indexer_id":   id,
		"ok":           len(results) > 0,
		"result_count": len(results),
	})
}

package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ddonindia/lodestarr/internal/config"
	"github.com/ddonindia/lodestarr/internal/database"
	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/executor"
	"github.com/ddonindia/lodestarr/internal/models"
	"github.com/ddonindia/lodestarr/internal/query"
)

// executors holds one Executor per loaded native definition, set by
// main.go whenever the registry is (re)built, keyed by definition ID.
// The aggregator's NativeSource wraps the same instances, so downloads
// and searches for a given indexer share cookie jar and proxy settings.
var executors map[string]*executor.Executor

// SetExecutors installs the per-indexer executor set used by the
// download proxy and by DeleteNative.
func SetExecutors(execs map[string]*executor.Executor) {
	executors = execs
}

// nativeSummary is the JSON view of one loaded definition.
type nativeSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Language string `json:"language"`
	Links    int    `json:"link_count"`
}

// ListNativeIndexers returns every loaded native IndexerDefinition summary.
func ListNativeIndexers(w http.ResponseWriter, r *http.Request) {
	if registry == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"indexers": []nativeSummary{}, "total": 0})
		return
	}

	defs := registry.All()
	out := make([]nativeSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, nativeSummary{
			ID:       d.ID,
			Name:     d.Name,
			Type:     string(d.Type),
			Language: d.Language,
			Links:    len(d.Links),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"indexers": out, "total": len(out)})
}

// ListLocalDefinitions catalogs the available/ directory of definitions
// not yet copied into active/native.
func ListLocalDefinitions(w http.ResponseWriter, r *http.Request) {
	cfg := config.Get()
	availableDir := filepath.Join(cfg.Definitions.Directory, "available")

	files, err := definition.Available(availableDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list local definitions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"available": files, "total": len(files)})
}

// SearchNative runs an ad-hoc search against one native indexer outside
// the Torznab envelope, returning raw JSON TorrentResults. A debug tool
// for definition authors.
func SearchNative(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IndexerID string `json:"indexer_id"`
		Query     string `json:"query"`
		Category  int    `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IndexerID == "" {
		respondError(w, http.StatusBadRequest, "indexer_id is required")
		return
	}
	if aggregatorService == nil {
		respondError(w, http.StatusInternalServerError, "Aggregator not initialized")
		return
	}

	q := query.SearchQuery{Mode: query.ModeSearch, Keywords: req.Query}
	if req.Category != 0 {
		q.Categories = []int{req.Category}
	}

	start := time.Now()
	results := aggregatorService.SearchOne(r.Context(), req.IndexerID, q)
	database.LogSearch(req.IndexerID, "native", req.Query, len(results), time.Since(start).Milliseconds(), "")

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results, "total": len(results)})
}

// TestNative runs a canned query against one native indexer and reports
// whether any result came back, for a "test this indexer" button.
func TestNative(w http.ResponseWriter, r *http.Request) {
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

// DownloadNative proxies a download through the executor for the given
// indexer, decoded from the base64url link the Torznab RSS handed out.
// Used by the companion /api/native/download management route, which
// takes the indexer ID as a query parameter rather than a path segment.
func DownloadNative(w http.ResponseWriter, r *http.Request) {
	serveDownload(w, r, r.URL.Query().Get("indexer"), r.URL.Query().Get("link"))
}

// DownloadProxy is the Torznab-facing download route
// (/api/v2.0/indexers/{id}/dl), keyed by the indexer ID in the path.
func DownloadProxy(w http.ResponseWriter, r *http.Request) {
	serveDownload(w, r, chi.URLParam(r, "id"), r.URL.Query().Get("link"))
}

// serveDownload decodes the base64url link and either redirects magnet
// links straight to the client or proxies the download through the
// indexer's executor, preserving its cookie jar and headers.
func serveDownload(w http.ResponseWriter, r *http.Request, indexerID, encoded string) {
	if indexerID == "" || encoded == "" {
		respondError(w, http.StatusBadRequest, "indexer and link are required")
		return
	}

	linkBytes, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid link encoding")
		return
	}
	targetURL := string(linkBytes)

	if strings.HasPrefix(targetURL, "magnet:") {
		database.LogDownload(indexerID, targetURL, "ok", "")
		database.LogActivity(models.ActivityDownloadServed, indexerID)
		http.Redirect(w, r, targetURL, http.StatusTemporaryRedirect)
		return
	}

	exec, ok := executors[indexerID]
	if !ok {
		database.LogDownload(indexerID, targetURL, "error", "unknown indexer")
		respondError(w, http.StatusNotFound, "Unknown indexer")
		return
	}

	body, err := exec.Download(r.Context(), targetURL)
	if err != nil {
		database.LogDownload(indexerID, targetURL, "error", err.Error())
		respondError(w, http.StatusBadGateway, "Download failed: "+err.Error())
		return
	}

	database.LogDownload(indexerID, targetURL, "ok", "")
	database.LogActivity(models.ActivityDownloadServed, indexerID)

	w.Header().Set("Content-Type", "application/x-bittorrent")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// DeleteNative removes a definition from active/native and reloads the
// registry so the change takes effect immediately.
func DeleteNative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "ID is required")
		return
	}

	cfg := config.Get()
	activeDir := filepath.Join(cfg.Definitions.Directory, "active", "native")

	removed := false
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(activeDir, id+ext)
		if err := os.Remove(path); err == nil {
			removed = true
		}
	}
	if !removed {
		respondError(w, http.StatusNotFound, "Definition not found")
		return
	}

	if registry != nil {
		if err := registry.Load(activeDir); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to reload registry")
			return
		}
	}
	if rebuildSources != nil {
		rebuildSources()
	}
	delete(executors, id)

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetNativeSettings returns the definition's declared settings merged
// with any persisted overrides.
func GetNativeSettings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "ID is required")
		return
	}
	if registry == nil || registry.Get(id) == nil {
		respondError(w, http.StatusNotFound, "Definition not found")
		return
	}

	def := registry.Get(id)
	overrides, err := database.GetIndexerSettings(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	out := make([]map[string]string, 0, len(def.Settings))
	for _, s := range def.Settings {
		value := s.Default
		if v, ok := overrides[s.Name]; ok {
			value = v
		}
		out = append(out, map[string]string{
			"name":  s.Name,
			"type":  s.Type,
			"label": s.Label,
			"value": value,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"settings": out})
}

// UpdateNativeSettings persists one or more setting overrides for a
// definition.
func UpdateNativeSettings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "ID is required")
		return
	}

	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for key, value := range req {
		if err := database.SetIndexerSetting(id, key, value); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save setting: "+key)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}


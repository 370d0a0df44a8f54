package handlers

import (
	"net/http"

	"github.com/ddonindia/lodestarr/internal/database"
)

// GetStats returns aggregate dashboard statistics: total searches served,
// total results returned, total downloads proxied, and a per-indexer
// breakdown of search volume.
func GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := database.GetStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	if registry != nil {
		stats["definitions_loaded"] = len(registry.IDs())
	}
	if aggregatorService != nil {
		stats["sources_configured"] = len(aggregatorService.Sources())
	}

	respondJSON(w, http.StatusOK, stats)
}

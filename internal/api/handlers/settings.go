package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ddonindia/lodestarr/internal/config"
	"github.com/ddonindia/lodestarr/internal/database"
	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/models"
)

// registry backs the definitions-loaded count reported by GetSettings and
// GetSetupStatus, set by main.go alongside SetAggregator.
var registry *definition.Registry

// SetRegistry installs the definition registry used by settings and
// native-indexer endpoints.
func SetRegistry(r *definition.Registry) {
	registry = r
}

// GetSettings returns current application settings
func GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg := config.Get()

	loadedIDs := []string{}
	if registry != nil {
		loadedIDs = registry.IDs()
	}

	settings := models.AppSettings{
		Server: models.ServerSettings{
			Host:   cfg.Server.Host,
			Port:   cfg.Server.Port,
			APIKey: cfg.Server.APIKey,
		},
		Database: models.DatabaseSettings{
			Path: cfg.Database.Path,
		},
		Definitions: models.DefinitionsSettings{
			Directory:    cfg.Definitions.Directory,
			ProxiedCount: len(cfg.Definitions.Proxied),
			LoadedIDs:    loadedIDs,
		},
		Aggregator: models.AggregatorSettings{
			MaxConcurrency: cfg.Aggregator.MaxConcurrency,
			CacheTTLSecond: cfg.Aggregator.CacheTTLSecond,
			ResultLimit:    cfg.Aggregator.ResultLimit,
		},
	}

	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings updates application settings
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]interface{}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for key, value := range req {
		if err := config.Update(key, value); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update setting: "+key)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ExportConfig exports the configuration as JSON
func ExportConfig(w http.ResponseWriter, r *http.Request) {
	cfg := config.Get()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=lodestarr-config.json")

	json.NewEncoder(w).Encode(cfg)
}

// ImportConfig imports a configuration from JSON
func ImportConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config

	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid configuration file")
		return
	}

	if err := config.Update("server", cfg.Server); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to import server config")
		return
	}
	if err := config.Update("definitions", cfg.Definitions); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to import definitions config")
		return
	}
	if err := config.Update("aggregator", cfg.Aggregator); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to import aggregator config")
		return
	}
	if err := config.Update("http_client", cfg.HTTPClient); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to import http client config")
		return
	}

	database.LogActivity(models.ActivityConfigImported, "")

	respondJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// GetSetupStatus returns setup wizard status
func GetSetupStatus(w http.ResponseWriter, r *http.Request) {
	cfg := config.Get()

	hasDefinitions := registry != nil && len(registry.IDs()) > 0
	hasProxied := len(cfg.Definitions.Proxied) > 0

	status := models.SetupStatus{
		Completed:        config.IsSetupCompleted(),
		HasDefinitions:   hasDefinitions,
		HasProxiedSource: hasProxied,
	}

	respondJSON(w, http.StatusOK, status)
}

// CompleteSetup marks the setup wizard as completed
func CompleteSetup(w http.ResponseWriter, r *http.Request) {
	if err := database.SetSetting("setup_completed", "true"); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to complete setup")
		return
	}

	database.LogActivity(models.ActivitySetupCompleted, "")

	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

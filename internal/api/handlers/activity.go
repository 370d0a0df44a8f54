package handlers

import (
	"net/http"
	"strconv"

	"github.com/ddonindia/lodestarr/internal/database"
)

// GetHistory returns recent search log entries (indexer, mode, query,
// result count, duration, error).
func GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	history, err := database.GetSearchHistory(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get search history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}

// GetActivity returns recent activity log entries (definition loads,
// setup events, config imports).
func GetActivity(w http.ResponseWriter, r *http.Request) {
	limitParam := r.URL.Query().Get("limit")
	limit := 50
	if limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	offsetParam := r.URL.Query().Get("offset")
	offset := 0
	if offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}

	eventType := r.URL.Query().Get("type")

	db := database.Get()

	q := `SELECT id, event_type, details, created_at FROM activity_log`
	args := []interface{}{}

	if eventType != "" {
		q += " WHERE event_type = ?"
		args = append(args, eventType)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.Query(q, args...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get activity")
		return
	}
	defer rows.Close()

	activities := make([]map[string]interface{}, 0)
	for rows.Next() {
		var id int64
		var eventType, createdAt string
		var details *string

		if err := rows.Scan(&id, &eventType, &details, &createdAt); err != nil {
			continue
		}

		activity := map[string]interface{}{
			"id":         id,
			"event_type": eventType,
			"created_at": createdAt,
		}
		if details != nil {
			activity["details"] = *details
		}

		activities = append(activities, activity)
	}

	respondJSON(w, http.StatusOK, activities)
}

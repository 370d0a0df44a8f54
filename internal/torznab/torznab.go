package torznab

import (
	"strconv"
	"strings"
)

// SearchParams represents Torznab search parameters as parsed off the wire.
type SearchParams struct {
	Mode       string
	Query      string
	Categories []int
	ImdbID     string
	TmdbID     string
	Season     int
	Episode    string
	Limit      int
	Offset     int
}

// ParseCategories parses a comma-separated category string
func ParseCategories(catStr string) []int {
	if catStr == "" {
		return nil
	}

	parts := strings.Split(catStr, ",")
	cats := make([]int, 0, len(parts))

	for _, p := range parts {
		if cat, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			cats = append(cats, cat)
		}
	}

	return cats
}

// NormalizeImdbID ensures IMDB ID has correct format (tt1234567)
func NormalizeImdbID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	// Remove "tt" prefix if present
	id = strings.TrimPrefix(id, "tt")

	// Add "tt" prefix back
	return "tt" + id
}

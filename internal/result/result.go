// Package result builds normalized TorrentResult records out of a
// populated extraction context, enforcing the title/URL/magnet/link/
// category invariants.
package result

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ddonindia/lodestarr/internal/filter"
)

// TorrentResult is the normalized output of a single extracted row.
type TorrentResult struct {
	Title       string    `json:"title"`
	GUID        string    `json:"guid"`
	Link        string    `json:"link"`
	Details     string    `json:"details,omitempty"`
	Magnet      string    `json:"magnet,omitempty"`
	InfoHash    string    `json:"info_hash,omitempty"`
	Size        uint64    `json:"size"`
	Seeders     int       `json:"seeders"`
	Leechers    int       `json:"leechers"`
	Grabs       int       `json:"grabs"`
	PublishDate time.Time `json:"publish_date"`
	Categories  []int     `json:"categories"`
	IMDBID      string    `json:"imdb_id,omitempty"`
	TMDBID      string    `json:"tmdb_id,omitempty"`
	Indexer     string    `json:"indexer"`
}

// Builder turns raw extracted string fields into a TorrentResult,
// resolving relative URLs against base.
type Builder struct {
	Base string
}

// Build applies invariants I1–I5. Returns false (and no result) if title
// could not be extracted — such rows are silently dropped.
func (b Builder) Build(fields map[string]string, categories []int) (TorrentResult, bool) {
	title := strings.TrimSpace(fields["title"])
	if title == "" {
		return TorrentResult{}, false
	}

	r := TorrentResult{
		Title:      title,
		Categories: categories,
	}

	r.Details = b.absolutize(fields["details"])
	r.Link = b.absolutize(fields["download"])
	r.Magnet = fields["magnet"]
	r.InfoHash = strings.ToLower(fields["infohash"])
	r.IMDBID = fields["imdbid"]
	if r.IMDBID == "" {
		r.IMDBID = fields["imdb"]
	}
	r.TMDBID = fields["tmdbid"]

	if r.Magnet == "" && r.InfoHash != "" {
		r.Magnet = synthesizeMagnet(r.InfoHash, title)
	}
	if r.Link == "" && r.Magnet != "" {
		r.Link = r.Magnet
	}

	r.GUID = fields["guid"]
	if r.GUID == "" {
		r.GUID = r.Details
	}
	if r.GUID == "" {
		r.GUID = r.Link
	}

	if size, ok := filter.ParseSize(fields["size"]); ok {
		r.Size = size
	} else if n, err := parseNumber(fields["size"]); err == nil {
		r.Size = uint64(n)
	}

	r.Seeders = parseIntField(fields["seeders"])
	r.Leechers = parseIntField(fields["leechers"])
	r.Grabs = parseIntField(fields["grabs"])

	r.PublishDate = parseDate(fields["date"])

	return r, true
}

func (b Builder) absolutize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "magnet:") {
		return raw
	}
	u, err := url.Parse(raw)
	if err == nil && u.IsAbs() {
		return raw
	}
	base, err := url.Parse(b.Base)
	if err != nil {
		return raw
	}
	rel, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(rel).String()
}

func synthesizeMagnet(infoHash, title string) string {
	return fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=%s", strings.ToLower(infoHash), url.QueryEscape(title))
}

func parseNumber(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseIntField(s string) int {
	n, err := parseNumber(s)
	if err != nil {
		return 0
	}
	return int(n)
}

var dateFormats = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	if t, ok := parseRelativeDate(s); ok {
		return t
	}
	return time.Time{}
}

func parseRelativeDate(s string) (time.Time, bool) {
	lower := strings.ToLower(s)
	now := time.Now().UTC()
	switch lower {
	case "now", "just now":
		return now, true
	case "today":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}
	if len(lower) >= 2 {
		unit := lower[len(lower)-1]
		var mult time.Duration
		switch unit {
		case 'h':
			mult = time.Hour
		case 'd':
			mult = 24 * time.Hour
		case 'w':
			mult = 7 * 24 * time.Hour
		case 'y':
			mult = 365 * 24 * time.Hour
		}
		if mult != 0 {
			if n, err := strconv.Atoi(lower[:len(lower)-1]); err == nil {
				return now.Add(-time.Duration(n) * mult), true
			}
		}
	}
	fields := strings.Fields(strings.TrimSuffix(lower, " ago"))
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[0])
		if err == nil {
			unit := strings.TrimSuffix(fields[1], "s")
			var mult time.Duration
			switch unit {
			case "second":
				mult = time.Second
			case "minute":
				mult = time.Minute
			case "hour":
				mult = time.Hour
			case "day":
				mult = 24 * time.Hour
			case "week":
				mult = 7 * 24 * time.Hour
			case "month":
				mult = 30 * 24 * time.Hour
			case "year":
				mult = 365 * 24 * time.Hour
			}
			if mult != 0 {
				return now.Add(-time.Duration(n) * mult), true
			}
		}
	}
	return time.Time{}, false
}

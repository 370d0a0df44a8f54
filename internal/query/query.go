// Package query defines the normalized search request shape shared by the
// Torznab handler, the executor, and the aggregator.
package query

// Mode is the search mode requested by the caller.
type Mode string

const (
	ModeSearch Mode = "search"
	ModeTV     Mode = "tvsearch"
	ModeMovie  Mode = "movie"
	ModeMusic  Mode = "music"
	ModeBook   Mode = "book"
)

// SearchQuery is the normalized request passed to an indexer.
type SearchQuery struct {
	Mode       Mode
	Keywords   string
	Categories []int
	Limit      int
	Offset     int

	IMDBID  string
	TMDBID  string
	TVDBID  string
	TVMazeID string
	TraktID string
	DoubanID string

	Season int
	Episode string
	Year    int
	Genre   string
	Artist  string
	Album   string
	Author  string
	Title   string
}

// Page computes the 1-based page number implied by Offset/Limit, for
// definitions whose search path templates reference {{ .Query.Page }}.
func (q SearchQuery) Page() int {
	if q.Limit <= 0 {
		return 1
	}
	return q.Offset/q.Limit + 1
}

// ToMap converts the query into the flat map consumed by the template
// engine's Query.* namespace.
func (q SearchQuery) ToMap() map[string]any {
	return map[string]any{
		"Q":        q.Keywords,
		"Keywords": q.Keywords,
		"Mode":     string(q.Mode),
		"Limit":    q.Limit,
		"Offset":   q.Offset,
		"Page":     q.Page(),
		"IMDBID":   q.IMDBID,
		"TMDBID":   q.TMDBID,
		"TVDBID":   q.TVDBID,
		"TVMazeID": q.TVMazeID,
		"TraktID":  q.TraktID,
		"DoubanID": q.DoubanID,
		"Season":   q.Season,
		"Episode":  q.Episode,
		"Year":     q.Year,
		"Genre":    q.Genre,
		"Artist":   q.Artist,
		"Album":    q.Album,
		"Author":   q.Author,
		"Title":    q.Title,
	}
}

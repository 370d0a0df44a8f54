package torznab

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/ddonindia/lodestarr/internal/result"
)

// RSS represents the root RSS element
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Atom    string   `xml:"xmlns:atom,attr"`
	Torznab string   `xml:"xmlns:torznab,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel represents the RSS channel
type Channel struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	Language    string `xml:"language"`
	Category    string `xml:"category"`
	Items       []Item `xml:"item"`

	// For caps response
	Response *Response `xml:"response,omitempty"`
}

// Item represents a single torrent result
type Item struct {
	Title       string     `xml:"title"`
	GUID        string     `xml:"guid"`
	Link        string     `xml:"link"`
	Comments    string     `xml:"comments,omitempty"`
	PubDate     string     `xml:"pubDate"`
	Size        int64      `xml:"size"`
	Description string     `xml:"description,omitempty"`
	Category    string     `xml:"category"`
	Enclosure   *Enclosure `xml:"enclosure,omitempty"`
	Attributes  []Attr     `xml:"torznab:attr"`
}

// Enclosure represents the torrent file/magnet link
type Enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// Attr represents a Torznab attribute
type Attr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Response for caps endpoint
type Response struct {
	Offset int `xml:"offset,attr"`
	Total  int `xml:"total,attr"`
}

// Caps represents the capabilities response
type Caps struct {
	XMLName    xml.Name       `xml:"caps"`
	Server     CapsServer     `xml:"server"`
	Limits     CapsLimits     `xml:"limits"`
	Searching  CapsSearching  `xml:"searching"`
	Categories CapsCategories `xml:"categories"`
}

// CapsServer represents server info in caps
type CapsServer struct {
	Version   string `xml:"version,attr"`
	Title     string `xml:"title,attr"`
	Strapline string `xml:"strapline,attr"`
	Email     string `xml:"email,attr,omitempty"`
	URL       string `xml:"url,attr,omitempty"`
	Image     string `xml:"image,attr,omitempty"`
}

// CapsLimits represents limits in caps
type CapsLimits struct {
	Max     int `xml:"max,attr"`
	Default int `xml:"default,attr"`
}

// CapsSearching represents search capabilities
type CapsSearching struct {
	Search      CapsSearch `xml:"search"`
	TVSearch    CapsSearch `xml:"tv-search"`
	MovieSearch CapsSearch `xml:"movie-search"`
	MusicSearch CapsSearch `xml:"music-search"`
	BookSearch  CapsSearch `xml:"book-search"`
}

// CapsSearch represents a single search type capability
type CapsSearch struct {
	Available       string `xml:"available,attr"`
	SupportedParams string `xml:"supportedParams,attr"`
}

// CapsCategories represents available categories
type CapsCategories struct {
	Categories []CapsCategory `xml:"category"`
}

// CapsCategory represents a category in caps
type CapsCategory struct {
	ID     int               `xml:"id,attr"`
	Name   string            `xml:"name,attr"`
	SubCat []CapsSubCategory `xml:"subcat,omitempty"`
}

// CapsSubCategory represents a subcategory
type CapsSubCategory struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// defaultCategory is used when a result carries no categories of its own.
const defaultCategory = CategoryTV

// NewCaps creates a capabilities response
func NewCaps(baseURL string) *Caps {
	cats := AllCategories()
	capsCats := make([]CapsCategory, len(cats))

	for i, cat := range cats {
		subCats := make([]CapsSubCategory, len(cat.SubCats))
		for j, sub := range cat.SubCats {
			subCats[j] = CapsSubCategory{
				ID:   sub.ID,
				Name: sub.Name,
			}
		}
		capsCats[i] = CapsCategory{
			ID:     cat.ID,
			Name:   cat.Name,
			SubCat: subCats,
		}
	}

	return &Caps{
		Server: CapsServer{
			Version:   "1.0",
			Title:     "Lodestarr",
			Strapline: "Native torrent indexer aggregator",
			URL:       baseURL,
		},
		Limits: CapsLimits{
			Max:     100,
			Default: 100,
		},
		Searching: CapsSearching{
			Search: CapsSearch{
				Available:       "yes",
				SupportedParams: "q",
			},
			TVSearch: CapsSearch{
				Available:       "yes",
				SupportedParams: "q,season,ep",
			},
			MovieSearch: CapsSearch{
				Available:       "yes",
				SupportedParams: "q,imdbid,tmdbid",
			},
			MusicSearch: CapsSearch{
				Available:       "yes",
				SupportedParams: "q,artist,album",
			},
			BookSearch: CapsSearch{
				Available:       "yes",
				SupportedParams: "q,author,title",
			},
		},
		Categories: CapsCategories{
			Categories: capsCats,
		},
	}
}

// downloadProxyPath wraps a non-magnet download URL behind the companion
// download proxy so clients always fetch through one stable origin, even
// when the underlying indexer requires cookies or a Referer header.
func downloadProxyPath(baseURL, indexerID, link string) string {
	if link == "" {
		return ""
	}
	encoded := base64.URLEncoding.EncodeToString([]byte(link))
	return fmt.Sprintf("%s/api/v2.0/indexers/%s/dl?link=%s", baseURL, indexerID, encoded)
}

// NewSearchResponse renders aggregated results as a Torznab RSS feed.
func NewSearchResponse(baseURL string, results []result.TorrentResult, offset, total int) *RSS {
	items := make([]Item, len(results))

	for i, r := range results {
		pubDate := r.PublishDate
		if pubDate.IsZero() {
			pubDate = time.Now()
		}

		link := r.Magnet
		enclosureType := "application/x-bittorrent;x-scheme-handler/magnet"
		if link == "" {
			link = downloadProxyPath(baseURL, r.Indexer, r.Link)
			enclosureType = "application/x-bittorrent"
		}

		// Sonarr and similar clients require a non-empty category; fall
		// back to TV (5000) rather than "Other" when an indexer's result
		// carries none.
		category := defaultCategory
		if len(r.Categories) > 0 {
			category = r.Categories[0]
		}

		items[i] = Item{
			Title:       r.Title,
			GUID:        r.GUID,
			Link:        link,
			PubDate:     pubDate.Format(time.RFC1123Z),
			Size:        int64(r.Size),
			Description: r.Details,
			Category:    strconv.Itoa(category),
			Enclosure: &Enclosure{
				URL:    link,
				Length: int64(r.Size),
				Type:   enclosureType,
			},
		}

		var attrs []Attr
		if len(r.Categories) > 0 {
			for _, c := range r.Categories {
				attrs = append(attrs, Attr{Name: "category", Value: strconv.Itoa(c)})
			}
		} else {
			attrs = append(attrs, Attr{Name: "category", Value: strconv.Itoa(defaultCategory)})
		}
		if r.Size > 0 {
			attrs = append(attrs, Attr{Name: "size", Value: strconv.FormatUint(r.Size, 10)})
		}
		attrs = append(attrs, Attr{Name: "seeders", Value: strconv.Itoa(r.Seeders)})
		attrs = append(attrs, Attr{Name: "peers", Value: strconv.Itoa(r.Seeders + r.Leechers)})
		attrs = append(attrs, Attr{Name: "leechers", Value: strconv.Itoa(r.Leechers)})
		if r.Grabs > 0 {
			attrs = append(attrs, Attr{Name: "grabs", Value: strconv.Itoa(r.Grabs)})
		}
		if r.InfoHash != "" {
			attrs = append(attrs, Attr{Name: "infohash", Value: r.InfoHash})
		}
		if r.Magnet != "" {
			attrs = append(attrs, Attr{Name: "magneturl", Value: r.Magnet})
		}
		if r.IMDBID != "" {
			attrs = append(attrs, Attr{Name: "imdbid", Value: r.IMDBID})
		}
		if r.TMDBID != "" {
			attrs = append(attrs, Attr{Name: "tmdbid", Value: r.TMDBID})
		}
		items[i].Attributes = attrs
	}

	return &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Torznab: "http://torznab.com/schemas/2015/feed",
		Channel: Channel{
			Title:       "Lodestarr",
			Description: "Native torrent indexer aggregator",
			Link:        baseURL,
			Language:    "en-us",
			Category:    "",
			Items:       items,
			Response: &Response{
				Offset: offset,
				Total:  total,
			},
		},
	}
}

// ParseSearchResponse decodes a remote Torznab RSS document into
// TorrentResult records, used when proxying another aggregator as a
// peer search source.
func ParseSearchResponse(body []byte) ([]result.TorrentResult, error) {
	// Item's "torznab:attr" tag only applies when encoding; on decode the
	// prefix is resolved to a namespace, so attrs are matched by local name.
	var rss struct {
		Channel struct {
			Items []struct {
				Item
				Attrs []Attr `xml:"attr"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("torznab: parse response: %w", err)
	}

	out := make([]result.TorrentResult, 0, len(rss.Channel.Items))
	for _, entry := range rss.Channel.Items {
		item := entry.Item
		r := result.TorrentResult{
			Title:   item.Title,
			GUID:    item.GUID,
			Details: item.Description,
			Size:    uint64(item.Size),
		}
		if item.Enclosure != nil {
			r.Link = item.Enclosure.URL
			if item.Enclosure.Length > 0 {
				r.Size = uint64(item.Enclosure.Length)
			}
		}
		if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			r.PublishDate = t
		}
		if cat, err := strconv.Atoi(item.Category); err == nil {
			r.Categories = append(r.Categories, cat)
		}

		for _, a := range entry.Attrs {
			switch a.Name {
			case "category":
				if cat, err := strconv.Atoi(a.Value); err == nil {
					r.Categories = append(r.Categories, cat)
				}
			case "seeders":
				r.Seeders, _ = strconv.Atoi(a.Value)
			case "leechers":
				r.Leechers, _ = strconv.Atoi(a.Value)
			case "grabs":
				r.Grabs, _ = strconv.Atoi(a.Value)
			case "infohash":
				r.InfoHash = a.Value
			case "magneturl":
				r.Magnet = a.Value
			case "imdbid":
				r.IMDBID = a.Value
			case "tmdbid":
				r.TMDBID = a.Value
			}
		}

		if r.Magnet == "" && len(item.Link) > 0 && len(item.Link) >= 7 && item.Link[:7] == "magnet:" {
			r.Magnet = item.Link
		}
		if r.Link == "" {
			r.Link = item.Link
		}
		if r.GUID == "" {
			r.GUID = r.Link
		}

		out = append(out, r)
	}
	return out, nil
}

// ErrorResponse creates an error response
type ErrorResponse struct {
	XMLName     xml.Name `xml:"error"`
	Code        int      `xml:"code,attr"`
	Description string   `xml:"description,attr"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code int, description string) *ErrorResponse {
	return &ErrorResponse{
		Code:        code,
		Description: description,
	}
}

// Common error codes
const (
	ErrorIncorrectUserCreds  = 100
	ErrorAccountSuspended    = 101
	ErrorInsufficientPrivs   = 102
	ErrorRegistrationDenied  = 103
	ErrorRegistrationClosed  = 104
	ErrorEmailAlreadyExists  = 105
	ErrorInvalidIMDBID       = 200
	ErrorTorrentNotFound     = 201
	ErrorRequestLimitReached = 500
	ErrorNoFunction          = 900
	ErrorNoParameter         = 901
	ErrorNoResults           = 902
)

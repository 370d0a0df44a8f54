// Package definition parses and holds Cardigann-style declarative YAML
// site definitions: the typed model, the permissive SelectorDef scalar
// variant, and the registry that owns the loaded set.
package definition

// IndexerType mirrors the tracker's access model.
type IndexerType string

const (
	TypePublic      IndexerType = "public"
	TypeSemiPrivate IndexerType = "semi-private"
	TypePrivate     IndexerType = "private"
)

// IndexerDefinition is the parsed YAML describing one site. Immutable
// once loaded; a configuration change rebuilds a fresh value rather than
// mutating this one in place.
type IndexerDefinition struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Type        IndexerType       `yaml:"type"`
	Language    string            `yaml:"language"`
	Links       []string          `yaml:"links"`
	LegacyLinks []string          `yaml:"legacylinks"`
	Caps        Caps              `yaml:"caps"`
	Login       *Login            `yaml:"login"`
	Settings    []Setting         `yaml:"settings"`
	Search      Search            `yaml:"search"`
	Download    *Download         `yaml:"download"`
	Meta        map[string]string `yaml:"-"`
}

// CanonicalBase returns the first declared link, the definition's base URL
// for resolving relative paths and absolutizing result URLs.
func (d *IndexerDefinition) CanonicalBase() string {
	if len(d.Links) == 0 {
		return ""
	}
	return d.Links[0]
}

// Caps is the category mapping table plus the search-mode capability list.
type Caps struct {
	CategoryMappings []CategoryMapping        `yaml:"categorymappings"`
	Modes            map[string][]string       `yaml:"modes"`
}

// CategoryMapping maps one tracker-native category id to a Torznab id.
type CategoryMapping struct {
	ID      string `yaml:"id"`
	Cat     int    `yaml:"cat"`
	Desc    string `yaml:"desc"`
	Default bool   `yaml:"default"`
}

// Login describes opportunistic cookie-acquisition, not full auth
// automation (out of scope per the Non-goals).
type Login struct {
	Path      string            `yaml:"path"`
	Method    string            `yaml:"method"`
	Inputs    map[string]string `yaml:"inputs"`
	Test      *Test             `yaml:"test"`
}

// Test declares a post-login selector used to confirm the session took.
type Test struct {
	Path     string `yaml:"path"`
	Selector string `yaml:"selector"`
}

// Setting is a single user-configurable option with a default.
type Setting struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Label   string `yaml:"label"`
	Default string `yaml:"default"`
}

// Search holds the paths, inputs, and field declarations for a search.
type Search struct {
	Paths            []SearchPath          `yaml:"paths"`
	Inputs           map[string]string      `yaml:"inputs"`
	KeywordsFilters  []FilterDef            `yaml:"keywordsfilters"`
	Error            []SelectorDef          `yaml:"error"`
	Rows             RowsDef                `yaml:"rows"`
	Fields           map[string]SelectorDef `yaml:"fields"`
}

// SearchPath is one candidate request the executor may issue.
type SearchPath struct {
	Path           string            `yaml:"path"`
	Method         string            `yaml:"method"`
	ResponseType   string            `yaml:"response"` // "html" (default) or "json"
	Categories     []string          `yaml:"categories"`
	Inputs         map[string]string `yaml:"inputs"`
	InheritInputs  *bool             `yaml:"inheritinputs"`
	Headers        map[string]string `yaml:"headers"`
}

// Inherits reports whether search-level inputs should be merged under
// this path (default true unless explicitly disabled).
func (p SearchPath) Inherits() bool {
	return p.InheritInputs == nil || *p.InheritInputs
}

// RowsDef describes row location: a CSS selector (HTML mode) or a
// dot-path (JSON mode). Attribute names a nested array within each
// top-level JSON match to expand into the actual rows, with the
// top-level match retained as the parent object for ".."-prefixed field
// selectors.
type RowsDef struct {
	Selector  string `yaml:"selector"`
	Attribute string `yaml:"attribute"`
}

// FilterDef is one pipeline stage as declared in YAML: name plus a tagged
// argument list (string/int/float/bool/list/mixed).
type FilterDef struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"-"`
}

// Download describes multi-step selectors for download indirection.
type Download struct {
	Selectors []SelectorDef `yaml:"selectors"`
}

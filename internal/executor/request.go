package executor

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/query"
	"github.com/ddonindia/lodestarr/internal/template"
	"github.com/ddonindia/lodestarr/internal/torznab"
)

// selectPaths keeps every search path whose declared categories intersect
// q's categories; if none match, all paths are kept (§4.5 Path selection).
func selectPaths(paths []definition.SearchPath, categories []int) []definition.SearchPath {
	if len(categories) == 0 {
		return paths
	}
	wanted := map[int]bool{}
	for _, c := range categories {
		wanted[c] = true
	}
	var matched []definition.SearchPath
	for _, p := range paths {
		if len(p.Categories) == 0 {
			matched = append(matched, p)
			continue
		}
		for _, pc := range p.Categories {
			n, err := strconv.Atoi(pc)
			if err == nil && wanted[n] {
				matched = append(matched, p)
				break
			}
		}
	}
	if len(matched) == 0 {
		return paths
	}
	return matched
}

// resolvePath joins a rendered path against the canonical base. Per the
// documented decision, a "?"-prefixed relative path is appended directly
// with no inserted separator (the defensive variant).
func resolvePath(base, rendered string) string {
	if rendered == "" {
		return base
	}
	if u, err := url.Parse(rendered); err == nil && u.IsAbs() {
		return rendered
	}
	if strings.HasPrefix(rendered, "?") {
		return strings.TrimRight(base, "/") + rendered
	}
	b, err := url.Parse(base)
	if err != nil {
		return base + rendered
	}
	rel, err := url.Parse(rendered)
	if err != nil {
		return base + rendered
	}
	return b.ResolveReference(rel).String()
}

// mergeInputs combines search-level and path-level inputs, path-level
// taking precedence, dropping search-level entirely when the path opts
// out of inheritance.
func mergeInputs(search, path map[string]string, inherit bool) map[string]string {
	out := map[string]string{}
	if inherit {
		for k, v := range search {
			out[k] = v
		}
	}
	for k, v := range path {
		out[k] = v
	}
	return out
}

// mapCategories maps query Torznab categories through the definition's
// tracker-native category table, preferring an exact match and falling
// back to the parent category (floor to nearest 1000).
func mapCategories(mappings []definition.CategoryMapping, categories []int) []string {
	byTorznab := map[int]string{}
	for _, m := range mappings {
		byTorznab[m.Cat] = m.ID
	}
	var out []string
	seen := map[string]bool{}
	for _, c := range categories {
		if id, ok := byTorznab[c]; ok {
			if !seen[id] {
				out = append(out, id)
				seen[id] = true
			}
			continue
		}
		parent := torznab.ParentCategory(c)
		if id, ok := byTorznab[parent]; ok && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

// buildRequest renders and assembles one HTTP request for a search path.
func (e *Executor) buildRequest(path definition.SearchPath, q query.SearchQuery, ctx *template.Context) (*http.Request, error) {
	rendered := template.Render(path.Path, ctx)
	fullURL := resolvePath(e.def.CanonicalBase(), rendered)

	method := path.Method
	if method == "" {
		method = e.def.Search.Inputs["method"]
	}
	if method == "" {
		method = "GET"
	}
	method = strings.ToUpper(method)

	merged := mergeInputs(e.def.Search.Inputs, path.Inputs, path.Inherits())
	categories := mapCategories(e.def.Caps.CategoryMappings, q.Categories)
	if len(categories) > 0 {
		ctx.Query["Categories"] = categories
	}

	renderedInputs := map[string]string{}
	for k, v := range merged {
		rv := template.Render(v, ctx)
		if rv == "" {
			continue
		}
		renderedInputs[k] = rv
	}

	var req *http.Request
	var err error
	if method == "POST" {
		form := url.Values{}
		for k, v := range renderedInputs {
			form.Set(k, v)
		}
		req, err = http.NewRequest(method, fullURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		u, perr := url.Parse(fullURL)
		if perr != nil {
			return nil, perr
		}
		qv := u.Query()
		for k, v := range renderedInputs {
			qv.Set(k, v)
		}
		u.RawQuery = qv.Encode()
		req, err = http.NewRequest(method, u.String(), nil)
	}
	if err != nil {
		return nil, err
	}

	setBrowserHeaders(req, e.opts.userAgent())
	for k, v := range path.Headers {
		rv := template.Render(v, ctx)
		if rv != "" {
			req.Header.Set(k, rv)
		}
	}
	return req, nil
}

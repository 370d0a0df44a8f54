// Package extractor runs the multi-pass field extraction that populates a
// template.Context's Result namespace from one HTML row or JSON row,
// threading selector-extracted fields back so later text fields can
// reference them.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/filter"
	"github.com/ddonindia/lodestarr/internal/selector"
	"github.com/ddonindia/lodestarr/internal/template"
)

const maxTextPasses = 5

// toFilters converts definition-declared filters to filter.Filter, first
// template-rendering each argument against ctx so a filter arg like
// "{{ .Query.Today.Year }}" resolves before the filter runs.
func toFilters(defs []definition.FilterDef, ctx *template.Context) []filter.Filter {
	out := make([]filter.Filter, len(defs))
	for i, d := range defs {
		args := make([]string, len(d.Args))
		for j, a := range d.Args {
			args[j] = renderOrLiteral(a, ctx)
		}
		out[i] = filter.Filter{Name: d.Name, Args: args}
	}
	return out
}

// ExtractHTML runs the full multi-pass extraction over one row element,
// writing results into ctx.Result, and returns the final flat string map.
func ExtractHTML(row *goquery.Selection, fields map[string]definition.SelectorDef, ctx *template.Context) map[string]string {
	// Pass 1: selector-based fields.
	selectorFields := map[string]definition.SelectorDef{}
	textFields := map[string]definition.SelectorDef{}
	for name, def := range fields {
		if def.Selector != "" {
			selectorFields[name] = def
		} else {
			textFields[name] = def
		}
	}
	for name, def := range selectorFields {
		if v, ok := extractHTMLField(row, def, ctx); ok {
			ctx.Result[name] = v
		}
	}

	runTextPasses(textFields, ctx)

	return flatten(ctx.Result)
}

// ExtractJSON runs the same multi-pass contract over one JSON row value.
func ExtractJSON(row gjson.Result, fields map[string]definition.SelectorDef, ctx *template.Context) map[string]string {
	selectorFields := map[string]definition.SelectorDef{}
	textFields := map[string]definition.SelectorDef{}
	for name, def := range fields {
		if def.Selector != "" {
			selectorFields[name] = def
		} else {
			textFields[name] = def
		}
	}
	for name, def := range selectorFields {
		if v, ok := extractJSONField(row, def, ctx); ok {
			ctx.Result[name] = v
		}
	}

	runTextPasses(textFields, ctx)

	return flatten(ctx.Result)
}

func runTextPasses(textFields map[string]definition.SelectorDef, ctx *template.Context) {
	for pass := 0; pass < maxTextPasses; pass++ {
		added := false
		for name, def := range textFields {
			if _, exists := ctx.Result[name]; exists {
				continue
			}
			if v, ok := extractTextField(def, ctx); ok {
				ctx.Result[name] = v
				added = true
			}
		}
		if !added {
			break
		}
	}
}

// extractTextField implements the SelectorDef extraction order for
// text/default-only definitions (step 1, 3, 4 of the §4.4 contract).
func extractTextField(def definition.SelectorDef, ctx *template.Context) (string, bool) {
	if def.IsLiteral {
		return def.Literal, true
	}
	if def.Text != "" {
		v := renderOrLiteral(def.Text, ctx)
		return applyCase(filter.Apply(v, toFilters(def.Filters, ctx)), def.Case), true
	}
	if def.Default != "" {
		v := renderOrLiteral(def.Default, ctx)
		return applyCase(filter.Apply(v, toFilters(def.Filters, ctx)), def.Case), true
	}
	return "", false
}

func renderOrLiteral(s string, ctx *template.Context) string {
	if template.IsTemplate(s) {
		return template.Render(s, ctx)
	}
	return s
}

func extractHTMLField(row *goquery.Selection, def definition.SelectorDef, ctx *template.Context) (string, bool) {
	if def.Selector == "" {
		return extractTextField(def, ctx)
	}
	chain := selector.Parse(def.Selector)
	sel := chain.Apply(row)
	if sel.Length() == 0 {
		return fallbackOrEmpty(def, ctx)
	}
	first := sel.First()
	if def.Remove != "" {
		first.Find(def.Remove).Remove()
	}
	var value string
	if def.Attribute != "" {
		value, _ = first.Attr(def.Attribute)
	} else {
		value = strings.TrimSpace(first.Text())
	}
	if value == "" {
		return fallbackOrEmpty(def, ctx)
	}
	value = filter.Apply(value, toFilters(def.Filters, ctx))
	return applyCase(value, def.Case), true
}

func fallbackOrEmpty(def definition.SelectorDef, ctx *template.Context) (string, bool) {
	if def.Default != "" {
		v := renderOrLiteral(def.Default, ctx)
		return applyCase(filter.Apply(v, toFilters(def.Filters, ctx)), def.Case), true
	}
	if def.Optional {
		return "", false
	}
	return "", false
}

func extractJSONField(row gjson.Result, def definition.SelectorDef, ctx *template.Context) (string, bool) {
	if def.Selector == "" {
		return extractTextField(def, ctx)
	}
	path := def.Selector
	target := row
	if strings.HasPrefix(path, "..") {
		// ".." references the parent object the row was expanded from,
		// recorded in Config under "__parent" by the caller.
		if parent, ok := ctx.Config["__parent"].(gjson.Result); ok {
			target = parent
			path = strings.TrimPrefix(path, "..")
			path = strings.TrimPrefix(path, ".")
		}
	}
	res := target.Get(path)
	if !res.Exists() {
		return fallbackOrEmpty(def, ctx)
	}
	value := res.String()
	if value == "" {
		return fallbackOrEmpty(def, ctx)
	}
	value = filter.Apply(value, toFilters(def.Filters, ctx))
	return applyCase(value, def.Case), true
}

func applyCase(value string, cases map[string]string) string {
	if cases == nil {
		return value
	}
	if mapped, ok := cases[value]; ok {
		return mapped
	}
	if mapped, ok := cases["*"]; ok {
		return mapped
	}
	return value
}

func flatten(result map[string]any) map[string]string {
	out := make(map[string]string, len(result))
	for k, v := range result {
		out[k] = template.Stringify(v)
	}
	return out
}

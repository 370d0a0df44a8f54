package template

import (
	"strings"
)

type item struct {
	kind string // "text", "expr", "if", "else", "end", "range"
	text string
}

func scan(tmpl string) []item {
	var items []item
	for {
		start := strings.Index(tmpl, "{{")
		if start < 0 {
			if tmpl != "" {
				items = append(items, item{kind: "text", text: tmpl})
			}
			break
		}
		if start > 0 {
			items = append(items, item{kind: "text", text: tmpl[:start]})
		}
		end := strings.Index(tmpl[start:], "}}")
		if end < 0 {
			// Unterminated tag: left literal, per "no exceptions propagate".
			items = append(items, item{kind: "text", text: tmpl[start:]})
			break
		}
		inner := strings.TrimSpace(tmpl[start+2 : start+end])
		items = append(items, classify(inner))
		tmpl = tmpl[start+end+2:]
	}
	return items
}

func classify(inner string) item {
	switch {
	case inner == "else":
		return item{kind: "else"}
	case inner == "end":
		return item{kind: "end"}
	case strings.HasPrefix(inner, "if "):
		return item{kind: "if", text: strings.TrimSpace(inner[3:])}
	case strings.HasPrefix(inner, "range "):
		return item{kind: "range", text: strings.TrimSpace(inner[6:])}
	default:
		return item{kind: "expr", text: inner}
	}
}

type node interface {
	render(ctx *Context, dot any, hasDot bool) string
}

type textNode string

func (t textNode) render(ctx *Context, dot any, hasDot bool) string { return string(t) }

type exprNode string

func (e exprNode) render(ctx *Context, dot any, hasDot bool) string {
	if string(e) == "." && hasDot {
		return Stringify(dot)
	}
	return Stringify(EvalValue(ctx, string(e)))
}

type ifNode struct {
	cond      string
	thenNodes []node
	elseNodes []node
}

func (n *ifNode) render(ctx *Context, dot any, hasDot bool) string {
	var body []node
	if EvalBool(ctx, n.cond) {
		body = n.thenNodes
	} else {
		body = n.elseNodes
	}
	var sb strings.Builder
	for _, c := range body {
		sb.WriteString(c.render(ctx, dot, hasDot))
	}
	return sb.String()
}

type rangeNode struct {
	path string
	body []node
}

func (n *rangeNode) render(ctx *Context, dot any, hasDot bool) string {
	val := EvalValue(ctx, n.path)
	values := toSlice(val)
	var sb strings.Builder
	for _, v := range values {
		for _, c := range n.body {
			sb.WriteString(c.render(ctx, v, true))
		}
	}
	return sb.String()
}

func toSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	default:
		return nil
	}
}

func parseNodes(items []item, i *int) []node {
	var nodes []node
	for *i < len(items) {
		it := items[*i]
		switch it.kind {
		case "text":
			nodes = append(nodes, textNode(it.text))
			*i++
		case "expr":
			nodes = append(nodes, exprNode(it.text))
			*i++
		case "if":
			*i++
			thenNodes := parseNodes(items, i)
			var elseNodes []node
			if *i < len(items) && items[*i].kind == "else" {
				*i++
				elseNodes = parseNodes(items, i)
			}
			if *i < len(items) && items[*i].kind == "end" {
				*i++
			}
			nodes = append(nodes, &ifNode{cond: it.text, thenNodes: thenNodes, elseNodes: elseNodes})
		case "range":
			*i++
			body := parseNodes(items, i)
			if *i < len(items) && items[*i].kind == "end" {
				*i++
			}
			nodes = append(nodes, &rangeNode{path: it.text, body: body})
		case "else", "end":
			return nodes
		}
	}
	return nodes
}

// Render evaluates tmpl against ctx and returns the resulting string.
// Malformed if/range blocks (missing end) simply consume to the end of
// the template; no error is returned, matching the "no exceptions
// propagate out of the template engine" contract.
func Render(tmpl string, ctx *Context) string {
	items := scan(tmpl)
	i := 0
	nodes := parseNodes(items, &i)
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.render(ctx, nil, false))
	}
	return applyLegacyPlaceholders(sb.String(), ctx)
}

func applyLegacyPlaceholders(s string, ctx *Context) string {
	replacements := map[string]string{
		"{query}":    Stringify(lookupMap(ctx.Query, []string{"Q"})),
		"{keywords}": Stringify(lookupMap(ctx.Query, []string{"Keywords"})),
		"{page}":     Stringify(lookupMap(ctx.Query, []string{"Page"})),
	}
	for k, v := range replacements {
		if v == "" {
			continue
		}
		s = strings.ReplaceAll(s, k, v)
	}
	return s
}

// RenderBool renders tmpl and interprets it as a boolean condition directly
// (used when a whole selector-def value is itself a bare `{{ if ... }}`
// expression rather than wrapping text).
func RenderBool(tmpl string, ctx *Context) bool {
	return Truthy(Render(tmpl, ctx))
}

// IsTemplate reports whether s contains a `{{` tag at all; plain strings
// with no tags are returned as literals by callers without invoking Render.
func IsTemplate(s string) bool {
	return strings.Contains(s, "{{")
}

package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/selector"
)

// LocateHTMLRows applies the row selector (possibly comma-separated
// alternatives) against doc, unioning matches while preserving
// per-alternative document order.
func LocateHTMLRows(doc *goquery.Selection, rowSelector string) []*goquery.Selection {
	chains := selector.ParseAlternatives(rowSelector)
	var rows []*goquery.Selection
	for _, chain := range chains {
		sel := chain.Apply(doc)
		sel.Each(func(_ int, s *goquery.Selection) {
			rows = append(rows, s)
		})
	}
	return rows
}

// JSONRow pairs a row value with the parent object it was expanded from
// (non-zero only when RowsDef.Attribute triggered a nested expansion).
type JSONRow struct {
	Value  gjson.Result
	Parent gjson.Result
	HasParent bool
}

// LocateJSONRows resolves RowsDef against a parsed JSON body. "$" or ""
// means root; arrays at the resolved path expand element by element; when
// Attribute is set, each top-level match is itself expanded by that
// nested array key, carrying the match along as the parent object.
func LocateJSONRows(root gjson.Result, rows definition.RowsDef) []JSONRow {
	path := strings.TrimPrefix(rows.Selector, "$")
	path = strings.TrimPrefix(path, ".")

	base := root
	if path != "" {
		base = root.Get(path)
	}

	var tops []gjson.Result
	if base.IsArray() {
		base.ForEach(func(_, v gjson.Result) bool {
			tops = append(tops, v)
			return true
		})
	} else {
		tops = []gjson.Result{base}
	}

	if rows.Attribute == "" {
		out := make([]JSONRow, len(tops))
		for i, t := range tops {
			out[i] = JSONRow{Value: t}
		}
		return out
	}

	var out []JSONRow
	for _, t := range tops {
		nested := t.Get(rows.Attribute)
		if !nested.Exists() {
			continue
		}
		if nested.IsArray() {
			nested.ForEach(func(_, v gjson.Result) bool {
				out = append(out, JSONRow{Value: v, Parent: t, HasParent: true})
				return true
			})
		} else {
			out = append(out, JSONRow{Value: nested, Parent: t, HasParent: true})
		}
	}
	return out
}

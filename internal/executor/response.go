package executor

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/extractor"
	"github.com/ddonindia/lodestarr/internal/result"
	"github.com/ddonindia/lodestarr/internal/template"

	"net/http"
)

func (e *Executor) parseResponse(resp *http.Response, p definition.SearchPath, tctx *template.Context) ([]result.TorrentResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, p.Path, err)
	}

	responseType := strings.ToLower(p.ResponseType)
	if responseType == "" {
		responseType = "html"
	}

	if responseType == "json" {
		if msg, matched := e.jsonErrorSelector(body, tctx); matched {
			return nil, newError(KindIndexerReported, p.Path, fmt.Errorf("%s", msg))
		}
		return e.parseJSON(body, tctx)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, newError(KindParse, p.Path, err)
	}
	if msg, matched := e.htmlErrorSelector(doc.Selection, tctx); matched {
		return nil, newError(KindIndexerReported, p.Path, fmt.Errorf("%s", msg))
	}
	return e.parseHTML(doc.Selection, tctx)
}

func (e *Executor) htmlErrorSelector(doc *goquery.Selection, tctx *template.Context) (string, bool) {
	for _, errSel := range e.def.Search.Error {
		if errSel.Selector == "" {
			continue
		}
		rows := extractor.LocateHTMLRows(doc, errSel.Selector)
		if len(rows) == 0 {
			continue
		}
		msg := strings.TrimSpace(rows[0].Text())
		if msg != "" {
			return msg, true
		}
	}
	return "", false
}

func (e *Executor) jsonErrorSelector(body []byte, tctx *template.Context) (string, bool) {
	root := gjson.ParseBytes(body)
	for _, errSel := range e.def.Search.Error {
		if errSel.Selector == "" {
			continue
		}
		res := root.Get(errSel.Selector)
		if res.Exists() && res.String() != "" {
			return res.String(), true
		}
	}
	return "", false
}

func (e *Executor) parseHTML(doc *goquery.Selection, tctx *template.Context) ([]result.TorrentResult, error) {
	rows := extractor.LocateHTMLRows(doc, e.def.Search.Rows.Selector)
	builder := result.Builder{Base: e.def.CanonicalBase()}

	var out []result.TorrentResult
	for _, row := range rows {
		rowCtx := tctx.Clone()
		fields := extractor.ExtractHTML(row, e.def.Search.Fields, rowCtx)
		categories := e.resultCategories(fields["category"])
		r, ok := builder.Build(fields, categories)
		if !ok {
			continue
		}
		r.Indexer = e.def.ID
		out = append(out, r)
	}
	return out, nil
}

func (e *Executor) parseJSON(body []byte, tctx *template.Context) ([]result.TorrentResult, error) {
	root := gjson.ParseBytes(body)
	jsonRows := extractor.LocateJSONRows(root, e.def.Search.Rows)
	builder := result.Builder{Base: e.def.CanonicalBase()}

	var out []result.TorrentResult
	for _, jr := range jsonRows {
		rowCtx := tctx.Clone()
		if jr.HasParent {
			rowCtx.Config["__parent"] = jr.Parent
		}
		fields := extractor.ExtractJSON(jr.Value, e.def.Search.Fields, rowCtx)
		categories := e.resultCategories(fields["category"])
		r, ok := builder.Build(fields, categories)
		if !ok {
			continue
		}
		r.Indexer = e.def.ID
		out = append(out, r)
	}
	return out, nil
}

// resultCategories maps the tracker-native category value extracted from
// a row back to its Torznab canonical IDs (invariant I5): results never
// carry the tracker's own category numbering.
func (e *Executor) resultCategories(trackerCat string) []int {
	if trackerCat == "" {
		return nil
	}
	var out []int
	for _, m := range e.def.Caps.CategoryMappings {
		if m.ID == trackerCat {
			out = append(out, m.Cat)
		}
	}
	return out
}

package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/template"
)

func TestExtractHTMLRow(t *testing.T) {
	html := `<table class="list"><tr><td><a class="title" href="/t/42">Ubuntu 24.04</a></td><td class="size">  1.5 GB </td></tr></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	rows := LocateHTMLRows(doc.Selection, "table.list tr")
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	fields := map[string]definition.SelectorDef{
		"title":   {Selector: "a.title"},
		"details": {Selector: "a.title", Attribute: "href"},
		"size":    {Selector: "td.size", Filters: []definition.FilterDef{{Name: "trim"}}},
	}
	ctx := template.NewContext()
	got := ExtractHTML(rows[0], fields, ctx)
	if got["title"] != "Ubuntu 24.04" {
		t.Errorf("title = %q", got["title"])
	}
	if got["details"] != "/t/42" {
		t.Errorf("details = %q", got["details"])
	}
	if got["size"] != "1.5 GB" {
		t.Errorf("size = %q", got["size"])
	}
}

func TestExtractMultiPassTextTemplate(t *testing.T) {
	html := `<span class="t">Movie</span><span class="y">1999</span>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	fields := map[string]definition.SelectorDef{
		"raw_title": {Selector: ".t"},
		"year":      {Selector: ".y"},
		"title":     {Text: "{{ .Result.raw_title }} ({{ .Result.year }})"},
	}
	ctx := template.NewContext()
	got := ExtractHTML(doc.Selection, fields, ctx)
	if got["title"] != "Movie (1999)" {
		t.Errorf("title = %q, want Movie (1999)", got["title"])
	}
}

func TestExtractJSONWithParentReference(t *testing.T) {
	body := `{"data":{"movies":[{"title":"M","torrents":[{"seeds":42}]}]}}`
	root := gjson.Parse(body)
	rowsDef := definition.RowsDef{Selector: "data.movies", Attribute: "torrents"}
	rows := LocateJSONRows(root, rowsDef)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	fields := map[string]definition.SelectorDef{
		"title":   {Selector: "..title"},
		"seeders": {Selector: "seeds"},
	}
	ctx := template.NewContext()
	if rows[0].HasParent {
		ctx.Config["__parent"] = rows[0].Parent
	}
	got := ExtractJSON(rows[0].Value, fields, ctx)
	if got["title"] != "M" {
		t.Errorf("title = %q, want M", got["title"])
	}
	if got["seeders"] != "42" {
		t.Errorf("seeders = %q, want 42", got["seeders"])
	}
}

package template

import "testing"

func TestRenderIfElse(t *testing.T) {
	cases := []struct {
		name     string
		keywords any
		want     string
	}{
		{"truthy keyword", "ubuntu", "X"},
		{"empty keyword", "", "Y"},
		{"literal false", "false", "Y"},
		{"literal zero", "0", "Y"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := NewContext()
			ctx.Query["Keywords"] = c.keywords
			got := Render("{{ if .Keywords }}X{{ else }}Y{{ end }}", ctx)
			if got != c.want {
				t.Errorf("Render() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestRenderNestedIfElse(t *testing.T) {
	ctx := NewContext()
	ctx.Query["A"] = "1"
	ctx.Query["B"] = "1"
	tmpl := `{{ if .A }}{{ if eq .A .B }}FOUND{{ else }}MISMATCH{{ end }}{{ else }}EMPTY{{ end }}`

	got := Render(tmpl, ctx)
	if got != "FOUND" {
		t.Fatalf("Render() = %q, want FOUND", got)
	}

	ctx.Query["B"] = "2"
	got = Render(tmpl, ctx)
	if got != "MISMATCH" {
		t.Fatalf("Render() = %q, want MISMATCH", got)
	}

	ctx.Query["A"] = ""
	got = Render(tmpl, ctx)
	if got != "EMPTY" {
		t.Fatalf("Render() = %q, want EMPTY", got)
	}
}

func TestRenderRangeJoin(t *testing.T) {
	ctx := NewContext()
	ctx.Query["Categories"] = []string{"2000", "2010"}

	got := Render("{{range .Categories}}cat[]={{.}}&{{end}}", ctx)
	want := "cat[]=2000&cat[]=2010&"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	got = Render(`{{ join .Categories "," }}`, ctx)
	if got != "2000,2010" {
		t.Errorf("join = %q, want 2000,2010", got)
	}
}

func TestEvalValueComparisons(t *testing.T) {
	ctx := NewContext()
	cases := []struct {
		expr string
		want bool
	}{
		{"eq 1 1", true},
		{"eq 1 2", false},
		{"gt 5 3", true},
		{"lt 5 3", false},
		{"ge 5 5", true},
		{"le 4 5", true},
		{"ne 'a' 'b'", true},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			if got := EvalBool(ctx, c.expr); got != c.want {
				t.Errorf("EvalBool(%q) = %v, want %v", c.expr, got, c.want)
			}
		})
	}
}

func TestTodayDateHelpers(t *testing.T) {
	ctx := NewContext()
	got := Render("{{ .Query.Today.Year }}-{{ .Query.Today.Month }}-{{ .Query.Today.Day }}", ctx)
	if len(got) != 10 {
		t.Errorf("Render() = %q, want 10-char date", got)
	}
}

func TestLegacyPlaceholders(t *testing.T) {
	ctx := NewContext()
	ctx.Query["Keywords"] = "ubuntu"
	got := Render("search?q={keywords}", ctx)
	if got != "search?q=ubuntu" {
		t.Errorf("Render() = %q", got)
	}
}

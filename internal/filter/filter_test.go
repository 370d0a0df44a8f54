package filter

import "testing"

func TestQuerystring(t *testing.T) {
	got := querystring("browse.php?cat=123&page=1", "cat")
	if got != "123" {
		t.Errorf("querystring() = %q, want 123", got)
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"1 GiB", 1073741824},
		{"500 MB", 500000000},
		{"1.5 GB", 1500000000},
		{"2,500", 2500},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, ok := ParseSize(c.in)
			if !ok {
				t.Fatalf("ParseSize(%q) failed", c.in)
			}
			if got != c.want {
				t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

func TestDateparse(t *testing.T) {
	got := dateparse("2024-01-02 03:04:05", "yyyy-MM-dd HH:mm:ss")
	want := "2024-01-02T03:04:05+00:00"
	if got != want {
		t.Errorf("dateparse() = %q, want %q", got, want)
	}
}

func TestApplyPipeline(t *testing.T) {
	got := Apply("  Hello World  ", []Filter{
		{Name: "trim"},
		{Name: "tolower"},
		{Name: "replace", Args: []string{"world", "there"}},
	})
	if got != "hello there" {
		t.Errorf("Apply() = %q", got)
	}
}

func TestNumOps(t *testing.T) {
	if got := numOp("10", "5", func(a, b float64) float64 { return a + b }); got != "15" {
		t.Errorf("numOp add = %q", got)
	}
	if got := numOp("10", "0", func(a, b float64) float64 {
		if b == 0 {
			return a
		}
		return a / b
	}); got != "10" {
		t.Errorf("numOp div by zero = %q, want passthrough", got)
	}
}

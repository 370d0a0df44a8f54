package result

import "testing"

func TestBuildDropsMissingTitle(t *testing.T) {
	b := Builder{Base: "https://x.test"}
	_, ok := b.Build(map[string]string{"details": "/t/1"}, nil)
	if ok {
		t.Fatal("expected row with no title to be dropped")
	}
}

func TestBuildAbsolutizesURLs(t *testing.T) {
	b := Builder{Base: "https://x.test"}
	r, ok := b.Build(map[string]string{
		"title":   "Ubuntu 24.04",
		"details": "/t/42",
		"size":    "1.5 GB",
	}, nil)
	if !ok {
		t.Fatal("expected row to build")
	}
	if r.Details != "https://x.test/t/42" {
		t.Errorf("Details = %q", r.Details)
	}
	if r.Size != 1_500_000_000 {
		t.Errorf("Size = %d, want 1500000000", r.Size)
	}
}

func TestBuildSynthesizesMagnet(t *testing.T) {
	b := Builder{Base: "https://x.test"}
	r, ok := b.Build(map[string]string{
		"title":    "Some Movie",
		"infohash": "ABCDEF0123456789ABCDEF0123456789ABCDEF01",
	}, nil)
	if !ok {
		t.Fatal("expected row to build")
	}
	want := "magnet:?xt=urn:btih:abcdef0123456789abcdef0123456789abcdef01&dn=Some+Movie"
	if r.Magnet != want {
		t.Errorf("Magnet = %q, want %q", r.Magnet, want)
	}
	if r.Link != r.Magnet {
		t.Errorf("Link = %q, want fallback to magnet", r.Link)
	}
}

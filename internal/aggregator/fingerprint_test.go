package aggregator

import (
	"testing"

	"github.com/ddonindia/lodestarr/internal/query"
)

func TestFingerprint_Deterministic(t *testing.T) {
	q := query.SearchQuery{Keywords: "ubuntu", Categories: []int{2000, 5000}}

	a := Fingerprint("native", "indexer1", q)
	b := Fingerprint("native", "indexer1", q)
	if a != b {
		t.Errorf("expected identical fingerprints for identical input, got %q and %q", a, b)
	}
}

func TestFingerprint_CategoryOrderIndependent(t *testing.T) {
	q1 := query.SearchQuery{Keywords: "ubuntu", Categories: []int{5000, 2000}}
	q2 := query.SearchQuery{Keywords: "ubuntu", Categories: []int{2000, 5000}}

	if Fingerprint("native", "indexer1", q1) != Fingerprint("native", "indexer1", q2) {
		t.Error("expected category order not to affect the fingerprint")
	}
}

func TestFingerprint_DiffersByIndexerAndKind(t *testing.T) {
	q := query.SearchQuery{Keywords: "ubuntu"}

	base := Fingerprint("native", "indexer1", q)
	if Fingerprint("native", "indexer2", q) == base {
		t.Error("expected different indexer IDs to produce different fingerprints")
	}
	if Fingerprint("proxied", "indexer1", q) == base {
		t.Error("expected different source kinds to produce different fingerprints")
	}
}

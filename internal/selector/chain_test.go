package selector

import "testing"

func TestParseChainWithPseudos(t *testing.T) {
	chain := Parse(`table:contains('H') tr:has(a):not(.hdr)`)
	if len(chain.Segments) != 2 {
		t.Fatalf("len(Segments) = %d, want 2", len(chain.Segments))
	}
	if chain.Segments[0].CSS != "table" || chain.Segments[0].Contains != "H" {
		t.Errorf("segment 0 = %+v", chain.Segments[0])
	}
	if chain.Segments[1].CSS != "tr" || chain.Segments[1].Has != "a" || chain.Segments[1].Not != ".hdr" {
		t.Errorf("segment 1 = %+v", chain.Segments[1])
	}
}

func TestDecodeCSSEscapes(t *testing.T) {
	got := []rune(decodeCSSEscapes(`\00a0GB`))
	want := []rune{0x00a0, 'G', 'B'}
	if len(got) != len(want) {
		t.Fatalf("decodeCSSEscapes() = %q, want len %d", string(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("decodeCSSEscapes()[%d] = %U, want %U", i, got[i], want[i])
		}
	}
}

func TestParseAlternatives(t *testing.T) {
	chains := ParseAlternatives("table.a tr, table.b tr")
	if len(chains) != 2 {
		t.Fatalf("len(chains) = %d, want 2", len(chains))
	}
}

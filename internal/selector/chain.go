// Package selector implements the CSS-chain parser and applier used to
// locate rows and fields within a parsed HTML document: plain CSS
// segments plus :contains/:has/:not pseudo-filters, applied left to right
// with descendant-combinator semantics.
package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Segment is one step of a chain: a base CSS selector plus at most one
// each of the three pseudo-filters.
type Segment struct {
	CSS      string
	Contains string
	Has      string
	Not      string
}

// Chain is a parsed, ready-to-apply selector chain.
type Chain struct {
	Segments []Segment
}

// Parse splits a selector string on top-level whitespace or `>` (both
// normalize to descendant combinator), extracting pseudo-filters from each
// resulting segment.
func Parse(s string) Chain {
	raw := splitTopLevel(s)
	chain := Chain{Segments: make([]Segment, 0, len(raw))}
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		chain.Segments = append(chain.Segments, parseSegment(r))
	}
	return chain
}

// splitTopLevel splits on whitespace or '>' outside quotes/parens.
func splitTopLevel(s string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote byte
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			cur.WriteByte(ch)
		case ch == '(':
			depth++
			cur.WriteByte(ch)
		case ch == ')':
			depth--
			cur.WriteByte(ch)
		case depth == 0 && (ch == ' ' || ch == '\t' || ch == '>'):
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return parts
}

func parseSegment(s string) Segment {
	seg := Segment{}
	s = strings.TrimSpace(s)
	for {
		if idx, kind, arg, rest, ok := extractPseudo(s); ok {
			switch kind {
			case "contains":
				seg.Contains = decodeCSSEscapes(arg)
			case "has":
				seg.Has = arg
			case "not":
				seg.Not = arg
			}
			s = s[:idx] + rest
			continue
		}
		break
	}
	seg.CSS = strings.TrimSpace(s)
	return seg
}

// extractPseudo finds the first :contains(...)/:has(...)/:not(...) in s
// and returns its start index, kind, inner argument, and s with the
// pseudo-filter removed.
func extractPseudo(s string) (idx int, kind, arg, rest string, ok bool) {
	for _, k := range []string{"contains", "has", "not"} {
		marker := ":" + k + "("
		pos := strings.Index(s, marker)
		if pos < 0 {
			continue
		}
		depth := 0
		start := pos + len(marker)
		for i := start; i < len(s); i++ {
			switch s[i] {
			case '(':
				depth++
			case ')':
				if depth == 0 {
					inner := s[start:i]
					inner = trimQuotes(inner)
					return pos, k, inner, s[i+1:], true
				}
				depth--
			}
		}
	}
	return 0, "", "", s, false
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// decodeCSSEscapes decodes `\XXXXXX` (with optional trailing whitespace)
// CSS unicode escape sequences, so that tracker headers using non-breaking
// space entities match against a literal `:contains()` argument.
func decodeCSSEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			j := i + 1
			hexEnd := j
			for hexEnd < len(s) && hexEnd < j+6 && isHexDigit(s[hexEnd]) {
				hexEnd++
			}
			if hexEnd > j {
				var code rune
				for _, c := range s[j:hexEnd] {
					code = code*16 + hexVal(c)
				}
				sb.WriteRune(code)
				i = hexEnd
				if i < len(s) && (s[i] == ' ' || s[i] == '\t') {
					i++
				}
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10
	}
	return 0
}

// Apply runs the chain against a starting selection, applying each
// segment's CSS selection then its contains/has/not filters in order. An
// unparseable CSS segment yields an empty set for the whole chain.
func (c Chain) Apply(doc *goquery.Selection) *goquery.Selection {
	current := doc
	for _, seg := range c.Segments {
		current = applySegment(current, seg)
		if current.Length() == 0 {
			return current
		}
	}
	return current
}

func applySegment(sel *goquery.Selection, seg Segment) *goquery.Selection {
	next := sel.Find(seg.CSS)
	if seg.Contains != "" {
		next = next.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), seg.Contains)
		})
	}
	if seg.Has != "" {
		next = next.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find(seg.Has).Length() > 0
		})
	}
	if seg.Not != "" {
		next = next.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find(seg.Not).Length() == 0 && !s.Is(seg.Not)
		})
	}
	return next
}

// ParseAlternatives splits a comma-separated row selector into independent
// alternatives, each parsed as its own Chain. The caller unions the
// resulting selections preserving per-alternative document order.
func ParseAlternatives(s string) []Chain {
	parts := splitTopLevelComma(s)
	chains := make([]Chain, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chains = append(chains, Parse(p))
	}
	return chains
}

func splitTopLevelComma(s string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			cur.WriteByte(ch)
		case ch == '(':
			depth++
			cur.WriteByte(ch)
		case ch == ')':
			depth--
			cur.WriteByte(ch)
		case depth == 0 && ch == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

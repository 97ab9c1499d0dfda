// Package trivia implements the marker/location engine of spec.md §4.1:
// finding AUTO markers inside comment trivia and mapping them back to
// exact source byte offsets.
package trivia

import (
	"strings"

	"github.com/autosv/autosv/pkg/svast"
)

// FindMarkerInTrivia searches a token's leading trivia for the first
// piece whose raw text contains marker as a literal substring, and
// returns the marker's (start, end) byte offsets within the source. The
// end offset is one past the marker text's last character.
//
// Offsets are reconstructed by starting at the token's own offset and
// walking backward by the length of each trivia piece, then forward to
// the located substring — per spec.md §4.1's requirement to compute
// trivia offsets by subtraction rather than relying on a source-manager
// API that this package does not have.
func FindMarkerInTrivia(tok svast.Token, marker string) (start, end int, ok bool) {
	pos := tok.TriviaStart()
	for _, tr := range tok.Leading {
		if idx := strings.Index(tr.Text, marker); idx >= 0 {
			return pos + idx, pos + idx + len(marker), true
		}
		pos += len(tr.Text)
	}
	return 0, 0, false
}

// HasMarkerInTokenTrivia is a cheap substring check reporting whether any
// piece of tok's leading trivia contains marker.
func HasMarkerInTokenTrivia(tok svast.Token, marker string) bool {
	for _, tr := range tok.Leading {
		if strings.Contains(tr.Text, marker) {
			return true
		}
	}
	return false
}

// FindMarkerInRawText locates a marker inside an arbitrary raw source
// slice (e.g. an instance's port-connection-list body), returning offsets
// relative to the start of that slice. This is the "falls back to
// scanning raw text" path of spec.md §4.1, used when a marker sits
// between a named connection and the close paren rather than as the
// leading trivia of some later token — the scanner attaches such
// in-list marker comments to the raw instance text rather than to any
// single Token's Leading, so a direct substring search is the accurate
// equivalent of "inspects block comments carried as token raw text".
func FindMarkerInRawText(raw string, marker string) (start, end int, ok bool) {
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(marker), true
}

// FindMarkerInNode recursively scans every token's leading trivia for a
// marker, returning absolute source offsets for the first occurrence in
// token order. It also falls back to scanning raw text carried by tokens
// themselves (block comments with no following tokens in scope), matching
// spec.md §4.1's node-level contract.
func FindMarkerInNode(tokens []svast.Token, marker string) (start, end int, ok bool) {
	for _, tok := range tokens {
		if s, e, found := FindMarkerInTrivia(tok, marker); found {
			return s, e, true
		}
		if strings.Contains(tok.Text, marker) {
			idx := strings.Index(tok.Text, marker)
			return tok.Offset + idx, tok.Offset + idx + len(marker), true
		}
	}
	return 0, 0, false
}

// AllMarkerOffsets returns every occurrence of marker across a token
// stream's leading trivia, in source order.
func AllMarkerOffsets(tokens []svast.Token, marker string) (offsets [][2]int) {
	for _, tok := range tokens {
		pos := tok.TriviaStart()
		for _, tr := range tok.Leading {
			searchFrom := 0
			for {
				idx := strings.Index(tr.Text[searchFrom:], marker)
				if idx < 0 {
					break
				}
				abs := pos + searchFrom + idx
				offsets = append(offsets, [2]int{abs, abs + len(marker)})
				searchFrom += idx + len(marker)
			}
			pos += len(tr.Text)
		}
	}
	return offsets
}

package trivia

import (
	"testing"

	"github.com/autosv/autosv/pkg/svast"
)

func tok(offset int, text string, leading ...svast.Trivia) svast.Token {
	return svast.Token{Offset: offset, Text: text, Leading: leading}
}

func TestFindMarkerInTrivia(t *testing.T) {
	// "  /*AUTOINST*/)" with ')' at offset 14.
	leading := []svast.Trivia{
		{Kind: svast.Whitespace, Text: "  "},
		{Kind: svast.BlockComment, Text: "/*AUTOINST*/"},
	}
	tk := tok(14, ")", leading...)

	start, end, ok := FindMarkerInTrivia(tk, "/*AUTOINST*/")
	if !ok {
		t.Fatalf("expected to find the marker")
	}
	if start != 2 || end != 14 {
		t.Fatalf("expected offsets (2, 14), got (%d, %d)", start, end)
	}
}

func TestFindMarkerInTrivia_NotFound(t *testing.T) {
	tk := tok(2, ")", svast.Trivia{Kind: svast.Whitespace, Text: "  "})
	if _, _, ok := FindMarkerInTrivia(tk, "/*AUTOINST*/"); ok {
		t.Fatalf("expected no match")
	}
}

func TestHasMarkerInTokenTrivia(t *testing.T) {
	tk := tok(14, ")", svast.Trivia{Kind: svast.BlockComment, Text: "/*AUTOLOGIC*/"})
	if !HasMarkerInTokenTrivia(tk, "/*AUTOLOGIC*/") {
		t.Fatalf("expected a match")
	}
	if HasMarkerInTokenTrivia(tk, "/*AUTOPORTS*/") {
		t.Fatalf("expected no match for a different marker")
	}
}

func TestFindMarkerInRawText(t *testing.T) {
	raw := ".clk(clk), /*AUTOINST*/"
	start, end, ok := FindMarkerInRawText(raw, "/*AUTOINST*/")
	if !ok {
		t.Fatalf("expected to find the marker")
	}
	if raw[start:end] != "/*AUTOINST*/" {
		t.Fatalf("expected offsets to bound the marker text, got %q", raw[start:end])
	}
}

func TestFindMarkerInRawText_NotFound(t *testing.T) {
	if _, _, ok := FindMarkerInRawText(".clk(clk)", "/*AUTOINST*/"); ok {
		t.Fatalf("expected no match")
	}
}

func TestFindMarkerInNode_FallsBackToTokenText(t *testing.T) {
	tokens := []svast.Token{
		tok(0, "foo"),
		tok(4, "/*AUTOLOGIC*/"),
	}
	start, end, ok := FindMarkerInNode(tokens, "/*AUTOLOGIC*/")
	if !ok {
		t.Fatalf("expected to find the marker in a token's own text")
	}
	if start != 4 || end != 4+len("/*AUTOLOGIC*/") {
		t.Fatalf("unexpected offsets (%d, %d)", start, end)
	}
}

func TestFindMarkerInNode_PrefersTrivia(t *testing.T) {
	tokens := []svast.Token{
		tok(20, ")", svast.Trivia{Kind: svast.BlockComment, Text: "/*AUTOINST*/"}),
	}
	start, _, ok := FindMarkerInNode(tokens, "/*AUTOINST*/")
	if !ok {
		t.Fatalf("expected to find the marker")
	}
	if start != 20-len("/*AUTOINST*/") {
		t.Fatalf("expected the trivia-relative offset, got %d", start)
	}
}

func TestAllMarkerOffsets_MultipleOccurrences(t *testing.T) {
	tokens := []svast.Token{
		tok(12, "a", svast.Trivia{Kind: svast.BlockComment, Text: "/*AUTOLOGIC*/"}),
		tok(40, "b", svast.Trivia{Kind: svast.BlockComment, Text: "/*AUTOLOGIC*/"}),
	}
	offsets := AllMarkerOffsets(tokens, "/*AUTOLOGIC*/")
	if len(offsets) != 2 {
		t.Fatalf("expected 2 marker occurrences, got %d", len(offsets))
	}
	if offsets[0][0] >= offsets[1][0] {
		t.Fatalf("expected offsets in source order, got %v", offsets)
	}
}

func TestAllMarkerOffsets_NoMatches(t *testing.T) {
	tokens := []svast.Token{tok(0, "a", svast.Trivia{Kind: svast.Whitespace, Text: " "})}
	if offsets := AllMarkerOffsets(tokens, "/*AUTOINST*/"); len(offsets) != 0 {
		t.Fatalf("expected no offsets, got %v", offsets)
	}
}

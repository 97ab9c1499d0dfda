package svast

import "testing"

func TestLex_AttachesLeadingTrivia(t *testing.T) {
	src := []byte("  // comment\nfoo")
	tokens := lex(src)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.Text != "foo" {
		t.Fatalf("expected token text %q, got %q", "foo", tok.Text)
	}
	if tok.Offset != len(src)-3 {
		t.Fatalf("expected offset %d, got %d", len(src)-3, tok.Offset)
	}
	if len(tok.Leading) != 3 {
		t.Fatalf("expected 3 trivia pieces (ws, comment, eol), got %d: %+v", len(tok.Leading), tok.Leading)
	}
	if tok.Leading[1].Kind != LineComment {
		t.Fatalf("expected second trivia piece to be a line comment, got %v", tok.Leading[1].Kind)
	}
}

func TestLex_BlockCommentTrivia(t *testing.T) {
	src := []byte("/*AUTOINST*/)")
	tokens := lex(src)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Text != ")" {
		t.Fatalf("expected %q, got %q", ")", tokens[0].Text)
	}
	if len(tokens[0].Leading) != 1 || tokens[0].Leading[0].Kind != BlockComment {
		t.Fatalf("expected a single block-comment trivia piece, got %+v", tokens[0].Leading)
	}
	if tokens[0].Leading[0].Text != "/*AUTOINST*/" {
		t.Fatalf("expected trivia text %q, got %q", "/*AUTOINST*/", tokens[0].Leading[0].Text)
	}
}

func TestLex_TrailingCommentGetsVirtualEOFToken(t *testing.T) {
	src := []byte("foo // trailing")
	tokens := lex(src)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens (foo, virtual EOF), got %d", len(tokens))
	}
	eof := tokens[1]
	if eof.Text != "" {
		t.Fatalf("expected virtual EOF token text to be empty, got %q", eof.Text)
	}
	if eof.Offset != len(src) {
		t.Fatalf("expected virtual EOF offset %d, got %d", len(src), eof.Offset)
	}
}

func TestLex_NoTrailingTriviaNoExtraToken(t *testing.T) {
	tokens := lex([]byte("foo"))
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
}

func TestLex_StringLiteralHandlesEscapes(t *testing.T) {
	tokens := lex([]byte(`"a\"b"`))
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Text != `"a\"b"` {
		t.Fatalf("expected the whole quoted literal as one token, got %q", tokens[0].Text)
	}
}

func TestToken_TriviaStartAndEnd(t *testing.T) {
	tok := Token{
		Offset:  10,
		Text:    "foo",
		Leading: []Trivia{{Kind: Whitespace, Text: "  "}, {Kind: EndOfLine, Text: "\n"}},
	}
	if got := tok.LeadingLen(); got != 3 {
		t.Fatalf("expected leading len 3, got %d", got)
	}
	if got := tok.TriviaStart(); got != 7 {
		t.Fatalf("expected trivia start 7, got %d", got)
	}
	if got := tok.End(); got != 13 {
		t.Fatalf("expected end 13, got %d", got)
	}
}

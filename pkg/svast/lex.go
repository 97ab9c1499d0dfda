package svast

// lex splits source into tokens, attaching whitespace and comments that
// precede each token as that token's leading trivia. This is the exact
// shape spec.md §6 requires of the external parser: "For each token:
// byte offset of the first character, a list of leading trivia pieces".
func lex(src []byte) []Token {
	var tokens []Token
	i := 0
	n := len(src)
	var pending []Trivia

	flushWS := func(start, end int) {
		if end > start {
			pending = append(pending, Trivia{Kind: Whitespace, Text: string(src[start:end])})
		}
	}

	for i < n {
		c := src[i]

		switch {
		case c == '\n':
			pending = append(pending, Trivia{Kind: EndOfLine, Text: "\n"})
			i++
			continue

		case c == ' ' || c == '\t' || c == '\r':
			start := i
			for i < n && (src[i] == ' ' || src[i] == '\t' || src[i] == '\r') {
				i++
			}
			flushWS(start, i)
			continue

		case c == '/' && i+1 < n && src[i+1] == '/':
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			pending = append(pending, Trivia{Kind: LineComment, Text: string(src[start:i])})
			continue

		case c == '/' && i+1 < n && src[i+1] == '*':
			start := i
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
			pending = append(pending, Trivia{Kind: BlockComment, Text: string(src[start:i])})
			continue
		}

		// A real token starts here.
		start := i
		var text string

		switch {
		case IsIdentByte(c) && !(c >= '0' && c <= '9'):
			for i < n && IsIdentByte(src[i]) {
				i++
			}
			text = string(src[start:i])

		case c >= '0' && c <= '9':
			// Numeric/sized literal: digits, optional `'[sbhdo]` base and digits,
			// underscores, and hex letters. Good enough to treat as one token;
			// the template matcher re-parses literal text independently.
			for i < n && (IsIdentByte(src[i]) || src[i] == '\'') {
				i++
			}
			text = string(src[start:i])

		case c == '\'':
			// Based literal with no leading size, e.g. '0, '1, 'z, 'x.
			i++
			for i < n && IsIdentByte(src[i]) {
				i++
			}
			text = string(src[start:i])

		case c == '"':
			i++
			for i < n && src[i] != '"' {
				if src[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			if i < n {
				i++
			}
			text = string(src[start:i])

		default:
			// Single-character punctuation token.
			i++
			text = string(src[start:i])
		}

		tok := Token{Offset: start, Text: text, Leading: pending}
		tokens = append(tokens, tok)
		pending = nil
	}

	if len(pending) > 0 {
		// Trailing trivia after the last real token (e.g. a final comment
		// before EOF) is attached to a virtual EOF token, per spec.md §9's
		// note that "the parser emits leading trivia only; the tail of the
		// file carries no trailing trivia on a virtual EOF token in a
		// useful way" unless we construct one explicitly, which we do here.
		tokens = append(tokens, Token{Offset: n, Text: "", Leading: pending})
	}

	return tokens
}

package svast

import (
	"fmt"
	"strings"
)

// scanner walks raw source bytes, skipping whitespace/comments between
// tokens, the way the teacher's pkg/preprocessor scanners (ternary.go,
// safe_nav.go) walk Dingo source looking for operator punctuation.
type scanner struct {
	src []byte
	pos int
}

func (s *scanner) len() int { return len(s.src) }

// skipTrivia advances past whitespace and comments, returning the offset
// of the next real character (or len(src) at EOF).
func (s *scanner) skipTrivia() {
	for s.pos < s.len() {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case c == '/' && s.pos+1 < s.len() && s.src[s.pos+1] == '/':
			for s.pos < s.len() && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.pos+1 < s.len() && s.src[s.pos+1] == '*':
			s.pos += 2
			for s.pos+1 < s.len() && !(s.src[s.pos] == '*' && s.src[s.pos+1] == '/') {
				s.pos++
			}
			if s.pos+1 < s.len() {
				s.pos += 2
			} else {
				s.pos = s.len()
			}
		default:
			return
		}
	}
}

func (s *scanner) peek() byte {
	if s.pos >= s.len() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) at(off int) byte {
	p := s.pos + off
	if p < 0 || p >= s.len() {
		return 0
	}
	return s.src[p]
}

// readIdent reads an identifier starting at the current (already
// trivia-skipped) position. Returns "" if the current position is not
// an identifier start.
func (s *scanner) readIdent() string {
	if s.pos >= s.len() || !IsIdentByte(s.src[s.pos]) || (s.src[s.pos] >= '0' && s.src[s.pos] <= '9') {
		return ""
	}
	start := s.pos
	for s.pos < s.len() && IsIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

// peekIdent looks ahead for the next identifier (after trivia) without
// consuming it.
func (s *scanner) peekIdent() string {
	saved := s.pos
	s.skipTrivia()
	id := s.readIdent()
	s.pos = saved
	return id
}

// matchBalanced consumes a balanced (…) / […] / {…} group starting at the
// current position (which must be the opening delimiter) and returns the
// offset of the matching closing delimiter, or -1 if unterminated.
func (s *scanner) matchBalanced(open, close byte) int {
	if s.peek() != open {
		return -1
	}
	depth := 0
	for s.pos < s.len() {
		c := s.src[s.pos]
		switch {
		case c == '/' && s.pos+1 < s.len() && s.src[s.pos+1] == '/':
			for s.pos < s.len() && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		case c == '/' && s.pos+1 < s.len() && s.src[s.pos+1] == '*':
			s.pos += 2
			for s.pos+1 < s.len() && !(s.src[s.pos] == '*' && s.src[s.pos+1] == '/') {
				s.pos++
			}
			if s.pos+1 < s.len() {
				s.pos += 2
			}
			continue
		case c == '"':
			s.pos++
			for s.pos < s.len() && s.src[s.pos] != '"' {
				if s.src[s.pos] == '\\' {
					s.pos++
				}
				s.pos++
			}
			s.pos++
			continue
		case c == open:
			depth++
			s.pos++
		case c == close:
			depth--
			s.pos++
			if depth == 0 {
				return s.pos - 1
			}
		default:
			s.pos++
		}
	}
	return -1
}

var svKeywords = map[string]bool{
	"module": true, "endmodule": true, "input": true, "output": true, "inout": true,
	"logic": true, "wire": true, "reg": true, "signed": true, "unsigned": true,
	"always": true, "always_comb": true, "always_ff": true, "initial": true,
	"assign": true, "parameter": true, "localparam": true, "generate": true,
	"endgenerate": true, "if": true, "else": true, "for": true, "case": true,
	"endcase": true, "function": true, "endfunction": true, "task": true,
	"endtask": true, "typedef": true, "import": true, "package": true,
	"struct": true, "enum": true, "interface": true, "endinterface": true,
	"begin": true, "end": true, "return": true,
}

// Parse builds a File syntax tree for one SystemVerilog source buffer.
func Parse(path string, source []byte) (*File, error) {
	f := &File{Source: source, Path: path}
	s := &scanner{src: source}

	for {
		s.skipTrivia()
		if s.pos >= s.len() {
			break
		}
		start := s.pos
		id := s.readIdent()
		if id == "module" {
			mod, err := parseModule(s, start)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			f.Modules = append(f.Modules, mod)
			continue
		}
		if id == "" {
			// Not an identifier (punctuation, stray char): skip one byte.
			if s.pos == start {
				s.pos++
			}
		}
		// Anything else at top level (package imports, `timescale via
		// comments already skipped, etc.) is simply skipped token by token.
	}

	return f, nil
}

func parseModule(s *scanner, headerStart int) (*ModuleDeclaration, error) {
	mod := &ModuleDeclaration{Start: headerStart, HeaderStart: headerStart}

	s.skipTrivia()
	mod.Name = s.readIdent()
	if mod.Name == "" {
		return nil, fmt.Errorf("expected module name after 'module'")
	}

	s.skipTrivia()
	// Optional parameter port list `#( ... )`.
	if s.peek() == '#' {
		s.pos++
		s.skipTrivia()
		if s.peek() == '(' {
			end := s.matchBalanced('(', ')')
			if end < 0 {
				return nil, fmt.Errorf("unterminated parameter list in module %s", mod.Name)
			}
			s.pos = end + 1
		}
		s.skipTrivia()
	}

	// Optional ANSI (or non-ANSI) port list.
	if s.peek() == '(' {
		portsStart := s.pos
		end := s.matchBalanced('(', ')')
		if end < 0 {
			return nil, fmt.Errorf("unterminated port list in module %s", mod.Name)
		}
		mod.Ports = parsePortList(s.src[portsStart+1:end], portsStart+1)
		mod.Ports.Start = portsStart
		mod.Ports.EndPos = end
		s.pos = end + 1
	}

	s.skipTrivia()
	if s.peek() == ';' {
		s.pos++
	}
	mod.HeaderEnd = s.pos

	// Body: scan for instantiations and net declarations until `endmodule`.
	for {
		s.skipTrivia()
		if s.pos >= s.len() {
			return nil, fmt.Errorf("unterminated module %s (missing endmodule)", mod.Name)
		}
		memberStart := s.pos
		id := s.peekIdent()
		if id == "endmodule" {
			s.skipTrivia()
			mod.BodyEnd = s.pos
			s.readIdent()
			mod.EndPos = s.pos
			return mod, nil
		}

		if id == "logic" || id == "wire" || id == "reg" {
			nd := parseNetDecl(s, memberStart)
			if nd != nil {
				mod.NetDecls = append(mod.NetDecls, nd)
			}
			continue
		}

		if !svKeywords[id] && id != "" {
			// Candidate instantiation: IDENT IDENT [#(...)] ( ... ) (, ...)* ;
			if inst := tryParseInstantiation(s, memberStart); inst != nil {
				mod.Instantiations = append(mod.Instantiations, inst)
				continue
			}
		}

		// Not recognized: skip one lexical unit so we make forward progress.
		skipOneUnit(s)
	}
}

// skipOneUnit advances past one identifier/number/punctuation/balanced
// group, used to make progress over module body constructs this package
// does not model (always blocks, assigns, generate, etc).
func skipOneUnit(s *scanner) {
	s.skipTrivia()
	if s.pos >= s.len() {
		return
	}
	switch s.peek() {
	case '(':
		if end := s.matchBalanced('(', ')'); end >= 0 {
			s.pos = end + 1
			return
		}
	case '[':
		if end := s.matchBalanced('[', ']'); end >= 0 {
			s.pos = end + 1
			return
		}
	case '{':
		if end := s.matchBalanced('{', '}'); end >= 0 {
			s.pos = end + 1
			return
		}
	}
	if id := s.readIdent(); id != "" {
		return
	}
	s.pos++
}

// parsePortList parses the contents of a module header's parens. It
// determines whether the list is ANSI (every entry declares a direction)
// or non-ANSI (bare identifiers), per spec.md §4.6's AUTOPORTS refusal
// requirement.
func parsePortList(body []byte, bodyOffset int) *AnsiPortList {
	list := &AnsiPortList{}
	s := &scanner{src: body}
	var lastDir Direction
	sawAny := false
	sawDirection := false

	for {
		s.skipTrivia()
		if s.pos >= s.len() {
			break
		}
		entryStart := s.pos
		sawAny = true

		dir := DirUnknown
		id := s.peekIdent()
		switch id {
		case "input":
			dir = DirInput
			s.readIdent()
		case "output":
			dir = DirOutput
			s.readIdent()
		case "inout":
			dir = DirInout
			s.readIdent()
		}
		if dir != DirUnknown {
			sawDirection = true
			lastDir = dir
		} else {
			dir = lastDir
		}

		s.skipTrivia()
		// Optional net type keyword.
		if nt := s.peekIdent(); nt == "logic" || nt == "wire" || nt == "reg" || nt == "signed" || nt == "unsigned" {
			s.readIdent()
			s.skipTrivia()
			if nt2 := s.peekIdent(); nt2 == "signed" || nt2 == "unsigned" {
				s.readIdent()
				s.skipTrivia()
			}
		}

		rangeStr := ""
		if s.peek() == '[' {
			rstart := s.pos
			end := s.matchBalanced('[', ']')
			if end >= 0 {
				rangeStr = string(s.src[rstart : end+1])
				s.pos = end + 1
			}
		}

		s.skipTrivia()
		name := s.readIdent()
		if name == "" {
			// Couldn't parse this entry as ANSI; advance to the next comma
			// so a malformed header doesn't spin forever.
			for s.pos < s.len() && s.src[s.pos] != ',' {
				s.pos++
			}
		} else {
			// Skip an unpacked dimension, e.g. `input logic a [3:0]` as an
			// array (rare in AUTO-relevant headers); fold into rangeStr only
			// when no packed range was already captured.
			s.skipTrivia()
			for s.peek() == '[' {
				rstart := s.pos
				end := s.matchBalanced('[', ']')
				if end < 0 {
					break
				}
				if rangeStr == "" {
					rangeStr = string(s.src[rstart : end+1])
				}
				s.pos = end + 1
				s.skipTrivia()
			}
			entryEnd := s.pos
			port := &ImplicitAnsiPort{
				Name:      name,
				Direction: dir,
				RangeStr:  rangeStr,
				Start:     bodyOffset + entryStart,
				EndPos:    bodyOffset + entryEnd,
			}
			list.Ports = append(list.Ports, port)
		}

		s.skipTrivia()
		if s.peek() == ',' {
			s.pos++
			continue
		}
		break
	}

	list.NonANSI = sawAny && !sawDirection && len(list.Ports) > 0
	return list
}

// parseNetDecl parses a `logic|wire|reg [range] name, name2;` statement.
func parseNetDecl(s *scanner, start int) *NetDeclaration {
	typ := s.readIdent()
	s.skipTrivia()
	if n := s.peekIdent(); n == "signed" || n == "unsigned" {
		s.readIdent()
		s.skipTrivia()
	}

	rangeStr := ""
	if s.peek() == '[' {
		rstart := s.pos
		end := s.matchBalanced('[', ']')
		if end >= 0 {
			rangeStr = string(s.src[rstart : end+1])
			s.pos = end + 1
		}
	}

	nd := &NetDeclaration{Type: typ, RangeStr: rangeStr, Start: start}
	for {
		s.skipTrivia()
		name := s.readIdent()
		if name == "" {
			break
		}
		nd.Names = append(nd.Names, name)
		s.skipTrivia()
		// Skip unpacked array dimensions on the name, e.g. `name [7:0]`.
		for s.peek() == '[' {
			end := s.matchBalanced('[', ']')
			if end < 0 {
				break
			}
			s.pos = end + 1
			s.skipTrivia()
		}
		if s.peek() == ',' {
			s.pos++
			continue
		}
		break
	}
	s.skipTrivia()
	if s.peek() == ';' {
		s.pos++
	}
	nd.EndPos = s.pos
	if len(nd.Names) == 0 {
		return nil
	}
	return nd
}

// tryParseInstantiation attempts to parse `moduleType instance (...) , instance2(...) ;`
// starting at the scanner's current position (already at moduleType's first
// character). On failure it restores the scanner position and returns nil,
// so the caller can fall back to skipOneUnit.
func tryParseInstantiation(s *scanner, start int) *HierarchyInstantiation {
	saved := s.pos
	moduleType := s.readIdent()
	if moduleType == "" {
		s.pos = saved
		return nil
	}

	s.skipTrivia()
	if s.peek() == '#' {
		s.pos++
		s.skipTrivia()
		if s.peek() == '(' {
			end := s.matchBalanced('(', ')')
			if end < 0 {
				s.pos = saved
				return nil
			}
			s.pos = end + 1
			s.skipTrivia()
		}
	}

	instNameStart := s.pos
	instName := s.readIdent()
	if instName == "" {
		s.pos = saved
		return nil
	}
	s.skipTrivia()
	// Optional array-of-instances range, e.g. `u_x [3:0] (...)`.
	if s.peek() == '[' {
		end := s.matchBalanced('[', ']')
		if end >= 0 {
			s.pos = end + 1
			s.skipTrivia()
		}
	}
	if s.peek() != '(' {
		s.pos = saved
		return nil
	}

	hi := &HierarchyInstantiation{ModuleType: moduleType, Start: start}

	for {
		openParen := s.pos
		closeParen := s.matchBalanced('(', ')')
		if closeParen < 0 {
			s.pos = saved
			return nil
		}
		body := s.src[openParen+1 : closeParen]
		inst := &HierarchicalInstance{
			InstanceName: instName,
			Start:        instNameStart,
			OpenParen:    openParen,
			CloseParen:   closeParen,
			RawText:      string(body),
		}
		inst.Connections = parseConnections(body, openParen+1)
		hi.Instances = append(hi.Instances, inst)

		s.pos = closeParen + 1
		s.skipTrivia()
		if s.peek() == ',' {
			s.pos++
			s.skipTrivia()
			instNameStart = s.pos
			instName = s.readIdent()
			if instName == "" {
				s.pos = saved
				return nil
			}
			s.skipTrivia()
			if s.peek() == '[' {
				end := s.matchBalanced('[', ']')
				if end >= 0 {
					s.pos = end + 1
					s.skipTrivia()
				}
			}
			if s.peek() != '(' {
				s.pos = saved
				return nil
			}
			continue
		}
		break
	}

	if s.peek() == ';' {
		s.pos++
	} else {
		s.pos = saved
		return nil
	}
	hi.EndPos = s.pos - 1
	return hi
}

// parseConnections splits an instance's port-connection-list body on
// top-level commas (respecting nested parens/braces/brackets) and parses
// each `.name(expr)` / `.name()` / `.name` entry. Non-`.name` leftovers
// (such as a bare `/*AUTOINST*/` marker with no following connection) are
// ignored here; pkg/directive locates markers independently against the raw
// instance text.
func parseConnections(body []byte, bodyOffset int) []*NamedPortConnection {
	var conns []*NamedPortConnection
	s := &scanner{src: body}

	for {
		s.skipTrivia()
		if s.pos >= s.len() {
			break
		}
		entryStart := s.pos
		if s.peek() != '.' {
			// Not a named connection (could be a marker comment already
			// consumed as trivia, or positional connection syntax which
			// spec.md does not require AUTOINST to support). Skip to the
			// next top-level comma.
			skipToComma(s)
			if s.peek() == ',' {
				s.pos++
				continue
			}
			break
		}
		s.pos++ // consume '.'
		name := s.readIdent()
		if name == "" {
			skipToComma(s)
			if s.peek() == ',' {
				s.pos++
				continue
			}
			break
		}
		s.skipTrivia()
		conn := &NamedPortConnection{PortName: name, Start: bodyOffset + entryStart}
		if s.peek() == '(' {
			open := s.pos
			end := s.matchBalanced('(', ')')
			if end >= 0 {
				conn.HasParen = true
				conn.Expr = strings.TrimSpace(string(s.src[open+1 : end]))
				s.pos = end + 1
			}
		}
		s.skipTrivia()
		conn.EndPos = bodyOffset + s.pos
		conns = append(conns, conn)
		if s.peek() == ',' {
			s.pos++
			continue
		}
		break
	}

	return conns
}

func skipToComma(s *scanner) {
	for s.pos < s.len() {
		switch s.peek() {
		case ',':
			return
		case '(':
			if end := s.matchBalanced('(', ')'); end >= 0 {
				s.pos = end + 1
				continue
			}
		case '[':
			if end := s.matchBalanced('[', ']'); end >= 0 {
				s.pos = end + 1
				continue
			}
		case '{':
			if end := s.matchBalanced('{', '}'); end >= 0 {
				s.pos = end + 1
				continue
			}
		}
		s.pos++
	}
}

// Tokens lexes the file's source into the token/trivia stream consumed by
// pkg/trivia.
func (f *File) Tokens() []Token {
	return lex(f.Source)
}

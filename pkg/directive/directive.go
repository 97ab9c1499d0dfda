// Package directive parses AUTO_TEMPLATE directive comments into rule
// tables and discovers AUTOINST/AUTOLOGIC/AUTOPORTS marker sites within a
// parsed file. See spec.md §4.2.
package directive

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
)

const (
	MarkerAutoInst  = "/*AUTOINST*/"
	MarkerAutoLogic = "/*AUTOLOGIC*/"
	MarkerAutoPorts = "/*AUTOPORTS*/"
	MarkerAutoReg   = "/*AUTOREG*/"
	MarkerAutoWire  = "/*AUTOWIRE*/"

	FenceBegin = "// Beginning of automatic logic"
	FenceEnd   = "// End of automatics"

	autoTemplateKeyword = "AUTO_TEMPLATE"
)

// Warning is a non-fatal parse problem recorded while scanning directives.
type Warning struct {
	Line    int
	Message string
}

var headerRe = regexp.MustCompile(`^\s*(\w+)\s+AUTO_TEMPLATE(?:\s*\(?\s*"([^"]*)"\s*\)?)?`)
var ruleRe = regexp.MustCompile(`^\s*(\S+)\s*=>\s*(.+?)\s*$`)
var autoInstFilterRe = regexp.MustCompile(`^/\*AUTOINST\s*\(\s*"([^"]*)"\s*\)\s*\*/$`)

// CollectTemplates scans every block comment in the file for AUTO_TEMPLATE
// directives and parses them into AutoTemplate rule tables. Templates can
// precede their instantiations anywhere in the same file (spec.md §3), so
// this is a whole-file pre-pass independent of module boundaries.
func CollectTemplates(f *svast.File) ([]*model.AutoTemplate, []Warning) {
	var templates []*model.AutoTemplate
	var warnings []Warning

	for _, tok := range f.Tokens() {
		pos := tok.TriviaStart()
		for _, tr := range tok.Leading {
			if tr.Kind == svast.BlockComment && strings.Contains(tr.Text, autoTemplateKeyword) {
				if t, w := parseTemplateComment(tr.Text, lineOf(f.Source, pos)); t != nil {
					templates = append(templates, t)
					warnings = append(warnings, w...)
				} else {
					warnings = append(warnings, w...)
				}
			}
			pos += len(tr.Text)
		}
	}
	return templates, warnings
}

// parseTemplateComment parses the body of one `/* MODULE AUTO_TEMPLATE ... */`
// comment. raw includes the surrounding "/*"..."*/" delimiters.
func parseTemplateComment(raw string, line int) (*model.AutoTemplate, []Warning) {
	var warnings []Warning
	body := raw
	body = strings.TrimPrefix(body, "/*")
	body = strings.TrimSuffix(body, "*/")

	lines := strings.Split(body, "\n")
	if len(lines) == 0 {
		return nil, warnings
	}

	m := headerRe.FindStringSubmatch(lines[0])
	if m == nil {
		warnings = append(warnings, Warning{Line: line, Message: "malformed AUTO_TEMPLATE header: " + strings.TrimSpace(lines[0])})
		return nil, warnings
	}

	t := &model.AutoTemplate{
		ModuleName:      m[1],
		InstancePattern: m[2],
		LineNumber:      line,
	}

	for i, raw := range lines[1:] {
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "//") {
			continue
		}
		// Strip a trailing "// comment".
		if idx := strings.Index(l, "//"); idx >= 0 {
			l = strings.TrimSpace(l[:idx])
		}
		l = trimTrailingPunct(l)
		rm := ruleRe.FindStringSubmatch(l)
		if rm == nil {
			warnings = append(warnings, Warning{
				Line:    line + i + 1,
				Message: fmt.Sprintf("malformed AUTO_TEMPLATE rule, discarded: %q", l),
			})
			continue
		}
		t.Rules = append(t.Rules, model.TemplateRule{PortPattern: rm[1], SignalExpr: rm[2]})
	}

	if len(t.Rules) == 0 {
		warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf("AUTO_TEMPLATE for %s has no rules", t.ModuleName)})
	}

	return t, warnings
}

func trimTrailingPunct(s string) string {
	s = strings.TrimRight(s, " \t")
	for len(s) > 0 && (s[len(s)-1] == ',' || s[len(s)-1] == ';') {
		s = strings.TrimRight(s[:len(s)-1], " \t")
	}
	return s
}

func lineOf(source []byte, offset int) int {
	return LineOf(source, offset)
}

// LineOf computes the 1-indexed source line containing offset, per
// spec.md §7's "line count = number of \n bytes before the offset plus 1".
func LineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}

// SelectTemplate picks, among templates applying to moduleType, the one
// with the greatest line number less than instanceLine (spec.md §3: "the
// one with the greatest line number wins (closest preceding)").
func SelectTemplate(templates []*model.AutoTemplate, moduleType string, instanceLine int) *model.AutoTemplate {
	var best *model.AutoTemplate
	for _, t := range templates {
		if t.ModuleName != moduleType {
			continue
		}
		if t.LineNumber >= instanceLine {
			continue
		}
		if best == nil || t.LineNumber > best.LineNumber {
			best = t
		}
	}
	return best
}

// FindAutoInst locates the `/*AUTOINST*/` (or filtered variant) marker
// inside one instance's connection list, if present. markerStart is the
// absolute offset of the marker's leading "/*"; markerEnd is one past
// its trailing "*/".
func FindAutoInst(inst *svast.HierarchicalInstance) (markerStart, markerEnd int, filterRegex string, manual map[string]bool, ok bool) {
	raw := inst.RawText
	idx := strings.Index(raw, "/*AUTOINST")
	if idx < 0 {
		return 0, 0, "", nil, false
	}
	end := strings.Index(raw[idx:], "*/")
	if end < 0 {
		return 0, 0, "", nil, false
	}
	markerText := raw[idx : idx+end+2]
	filter := ""
	if fm := autoInstFilterRe.FindStringSubmatch(markerText); fm != nil {
		filter = fm[1]
	}

	base := inst.OpenParen + 1
	startAbs := base + idx
	endAbs := base + idx + end + 2

	manualSet := make(map[string]bool)
	for _, c := range inst.Connections {
		if c.Start < startAbs {
			manualSet[c.PortName] = true
		}
	}

	return startAbs, endAbs, filter, manualSet, true
}

// FindAutoLogic locates an `/*AUTOLOGIC*/`/`/*AUTOREG*/`/`/*AUTOWIRE*/`
// marker within a module body's raw text span and, if present, an
// existing begin/end fence immediately following it.
func FindAutoLogic(source []byte, bodyStart, bodyEnd int) (*model.AutoLogicInfo, bool) {
	body := string(source[bodyStart:bodyEnd])

	kind, marker, idx := -1, "", -1
	for k, m := range map[model.AutoMarkerKind]string{
		model.KindAutoLogic: MarkerAutoLogic,
		model.KindAutoReg:   MarkerAutoReg,
		model.KindAutoWire:  MarkerAutoWire,
	} {
		if i := strings.Index(body, m); i >= 0 && (idx < 0 || i < idx) {
			kind, marker, idx = int(k), m, i
		}
	}
	if idx < 0 {
		return nil, false
	}

	markerEnd := bodyStart + idx + len(marker)
	info := &model.AutoLogicInfo{
		Kind:       model.AutoMarkerKind(kind),
		MarkerEnd:  markerEnd,
		FenceStart: -1,
		FenceEnd:   -1,
		Indent:     DetectIndent(source, bodyStart+idx),
	}

	rest := string(source[markerEnd:bodyEnd])
	if fb := strings.Index(rest, FenceBegin); fb >= 0 {
		afterBegin := markerEnd + fb
		if fe := strings.Index(string(source[afterBegin:bodyEnd]), FenceEnd); fe >= 0 {
			lineStart := afterBegin
			for lineStart > markerEnd && (source[lineStart-1] == ' ' || source[lineStart-1] == '\t') {
				lineStart--
			}
			info.FenceStart = lineStart
			info.FenceEnd = afterBegin + fe + len(FenceEnd)
		}
	}

	return info, true
}

// FindAutoPorts locates an `/*AUTOPORTS*/` marker inside a module's ANSI
// port list, if present.
func FindAutoPorts(source []byte, portListStart, portListEnd int) (*model.AutoPortsInfo, bool) {
	body := string(source[portListStart:portListEnd])
	idx := strings.Index(body, MarkerAutoPorts)
	if idx < 0 {
		return nil, false
	}
	markerEnd := portListStart + idx + len(MarkerAutoPorts)
	return &model.AutoPortsInfo{
		MarkerEnd:        markerEnd,
		HeaderCloseParen: portListEnd,
	}, true
}

// DetectIndent returns the whitespace preceding offset on its source line,
// used as the detected indentation for region and connection generation.
func DetectIndent(source []byte, offset int) string {
	lineStart := offset
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	i := lineStart
	for i < offset && (source[i] == ' ' || source[i] == '\t') {
		i++
	}
	return string(source[lineStart:i])
}

// HasMarkerBefore reports whether marker appears in source[:pos].
func HasMarkerBefore(source []byte, marker string, pos int) bool {
	return strings.Contains(string(source[:pos]), marker)
}

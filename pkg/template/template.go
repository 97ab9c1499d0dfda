// Package template implements the AUTO_TEMPLATE rule matcher: applying
// rename rules, substitution variables, ternary selection, and small
// arithmetic functions to produce a port's net expression. See
// spec.md §4.3.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
)

var defaultInstancePattern = regexp.MustCompile(`\d+`)

// MatchResult is the outcome of matching one port against a (possibly
// nil) template.
type MatchResult struct {
	SignalName  string
	MatchedRule bool
}

// Diagnostic is a warning raised while matching (invalid regex, constant
// assigned to an output, etc.), surfaced to the caller's collector.
type Diagnostic struct {
	Message string
}

// Match evaluates tmpl (which may be nil) against instanceName and port,
// returning the resolved signal expression.
func Match(tmpl *model.AutoTemplate, instanceName string, port model.PortInfo) (MatchResult, []Diagnostic) {
	var diags []Diagnostic

	if tmpl == nil {
		return MatchResult{SignalName: port.Name}, diags
	}

	instCaptures, d := instanceCaptures(tmpl.InstancePattern, instanceName)
	diags = append(diags, d...)

	for _, rule := range tmpl.Rules {
		re, err := regexp.Compile("^(?:" + rule.PortPattern + ")$")
		if err != nil {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("invalid port pattern %q: %v", rule.PortPattern, err)})
			continue
		}
		pm := re.FindStringSubmatch(port.Name)
		if pm == nil {
			continue
		}
		expr, d := substitute(rule.SignalExpr, pm[1:], instCaptures, instanceName, port)
		diags = append(diags, d...)

		if isConstant(expr) && (port.Direction == svast.DirOutput) {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("constant %q assigned to output port %q", expr, port.Name)})
		}

		return MatchResult{SignalName: expr, MatchedRule: true}, diags
	}

	return MatchResult{SignalName: port.Name}, diags
}

// instanceCaptures extracts the instance name's capture groups per
// spec.md §4.3 rule 1: the default pattern `\d+` finds the first decimal
// run; an explicit pattern matches the whole instance name.
func instanceCaptures(pattern, instanceName string) ([]string, []Diagnostic) {
	var diags []Diagnostic

	if pattern == "" {
		loc := defaultInstancePattern.FindString(instanceName)
		if loc == "" {
			return nil, diags
		}
		return []string{loc}, diags
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("invalid instance pattern %q: %v", pattern, err)})
		return nil, diags
	}
	m := re.FindStringSubmatch(instanceName)
	if m == nil {
		return nil, diags
	}
	return m[1:], diags
}

// substitute expands $N (port capture), %N / @ (instance capture),
// port.*/inst.* literals, ternaries, and arithmetic functions within rhs.
func substitute(rhs string, portCaptures, instCaptures []string, instanceName string, port model.PortInfo) (string, []Diagnostic) {
	var diags []Diagnostic
	rhs = strings.TrimSpace(rhs)

	if v, ok, d := evalTernary(rhs, portCaptures, instCaptures, instanceName, port); ok {
		diags = append(diags, d...)
		return v, diags
	}

	if v, ok, d := evalMathCall(rhs, portCaptures, instCaptures, instanceName, port); ok {
		diags = append(diags, d...)
		return v, diags
	}

	out, d := expandVariables(rhs, portCaptures, instCaptures, instanceName, port)
	diags = append(diags, d...)
	return out, diags
}

var varRe = regexp.MustCompile(`\$(\d)|%(\d)|@|\bport\.(name|width|range|input|output|inout)\b|\binst\.name`)

func expandVariables(s string, portCaptures, instCaptures []string, instanceName string, port model.PortInfo) (string, []Diagnostic) {
	var diags []Diagnostic
	out := varRe.ReplaceAllStringFunc(s, func(m string) string {
		switch {
		case m == "@":
			return capture(instCaptures, 1)
		case strings.HasPrefix(m, "$"):
			n, _ := strconv.Atoi(m[1:])
			return capture(portCaptures, n)
		case strings.HasPrefix(m, "%"):
			n, _ := strconv.Atoi(m[1:])
			return capture(instCaptures, n)
		case m == "port.name":
			return port.Name
		case m == "port.width":
			return strconv.Itoa(port.Width)
		case m == "port.range":
			return port.RangeStr
		case m == "port.input":
			return boolStr(port.Direction == svast.DirInput)
		case m == "port.output":
			return boolStr(port.Direction == svast.DirOutput)
		case m == "port.inout":
			return boolStr(port.Direction == svast.DirInout)
		case m == "inst.name":
			return instanceName
		}
		return m
	})
	return out, diags
}

func capture(groups []string, n int) string {
	if n <= 0 || n > len(groups) {
		return ""
	}
	return groups[n-1]
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

var ternaryRe = regexp.MustCompile(`^(port\.input|port\.output|port\.inout)\s*\?\s*(.+?)\s*:\s*(.+)$`)

func evalTernary(s string, portCaptures, instCaptures []string, instanceName string, port model.PortInfo) (string, bool, []Diagnostic) {
	m := ternaryRe.FindStringSubmatch(s)
	if m == nil {
		return "", false, nil
	}
	cond := false
	switch m[1] {
	case "port.input":
		cond = port.Direction == svast.DirInput
	case "port.output":
		cond = port.Direction == svast.DirOutput
	case "port.inout":
		cond = port.Direction == svast.DirInout
	}
	branch := m[3]
	if cond {
		branch = m[2]
	}
	v, d := substitute(branch, portCaptures, instCaptures, instanceName, port)
	return v, true, d
}

var mathCallRe = regexp.MustCompile(`^(add|sub|mul|div|mod)\(\s*(.+)\s*\)$`)

func evalMathCall(s string, portCaptures, instCaptures []string, instanceName string, port model.PortInfo) (string, bool, []Diagnostic) {
	m := mathCallRe.FindStringSubmatch(s)
	if m == nil {
		return "", false, nil
	}
	args := splitArgs(m[2])
	if len(args) != 2 {
		return "", false, nil
	}
	var diags []Diagnostic
	aStr, d := substitute(args[0], portCaptures, instCaptures, instanceName, port)
	diags = append(diags, d...)
	bStr, d := substitute(args[1], portCaptures, instCaptures, instanceName, port)
	diags = append(diags, d...)

	a, aErr := strconv.Atoi(strings.TrimSpace(aStr))
	b, bErr := strconv.Atoi(strings.TrimSpace(bStr))
	if aErr != nil || bErr != nil {
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("non-integer argument to %s(): %q, %q", m[1], aStr, bStr)})
		return "0", true, diags
	}

	var result int
	switch m[1] {
	case "add":
		result = a + b
	case "sub":
		result = a - b
	case "mul":
		result = a * b
	case "div":
		if b == 0 {
			diags = append(diags, Diagnostic{Message: "division by zero in div()"})
			return "0", true, diags
		}
		result = a / b
	case "mod":
		if b == 0 {
			diags = append(diags, Diagnostic{Message: "modulo by zero in mod()"})
			return "0", true, diags
		}
		result = a % b
	}
	return strconv.Itoa(result), true, diags
}

// splitArgs splits a comma-separated argument list, respecting nested
// parens so that e.g. add(mul(1,2),3) splits into two top-level args.
func splitArgs(s string) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[last:]))
	return out
}

// sizedLiteralRe matches sized/based numeric literals (e.g. 8'hFF);
// isConstant accepts these alongside the special spellings '0/'1/'z/'x
// and plain decimal numbers (plainNumberRe).
var sizedLiteralRe = regexp.MustCompile(`^[0-9_]*'[sS]?[bBoOdDhH][0-9a-fA-F_xXzZ]+$`)
var plainNumberRe = regexp.MustCompile(`^[0-9][0-9_]*$`)

// IsUnconnected reports whether expr is the special "unconnected" token.
func IsUnconnected(expr string) bool {
	e := strings.TrimSpace(expr)
	return e == "" || e == "_"
}

func isConstant(expr string) bool {
	e := strings.TrimSpace(expr)
	switch e {
	case "'0", "'1", "'z", "'x", "'Z", "'X", "0", "1", "z", "x", "Z", "X":
		return true
	}
	if sizedLiteralRe.MatchString(e) {
		return true
	}
	if plainNumberRe.MatchString(e) {
		return true
	}
	return false
}

// IsConstant is the exported form of isConstant, used by the aggregator
// to skip constant signal expressions (spec.md §3).
func IsConstant(expr string) bool { return isConstant(expr) }

// FormatConstant renders a special constant token as SystemVerilog
// literal text (e.g. "0" -> "1'b0", "'1" left as-is).
func FormatConstant(expr string) string {
	e := strings.TrimSpace(expr)
	switch e {
	case "0":
		return "1'b0"
	case "1":
		return "1'b1"
	case "z", "Z":
		return "1'bz"
	case "x", "X":
		return "1'bx"
	default:
		return e
	}
}

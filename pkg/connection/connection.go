// Package connection implements the width-adapting AUTOINST connection
// generator of spec.md §4.5: for each instance, resolve ports, consult
// the template matcher, apply width adaptation, and produce aligned
// replacement text.
package connection

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/autosv/autosv/pkg/aggregator"
	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
	"github.com/autosv/autosv/pkg/template"
)

// Diagnostic is a warning raised while generating connection text.
type Diagnostic struct {
	Message string
}

// Result is the materialized replacement text for one AUTOINST marker,
// along with the ports it rendered as unconnected.
type Result struct {
	Text        string
	Unconnected []string // ports emitted as ".port ()" via the `_` special value
}

// Generate computes the text that replaces the span from the end of an
// AUTOINST marker to the instance's close paren.
func Generate(cfg *config.Config, agg *aggregator.Aggregator, def *model.ModuleDef, info model.AutoInstInfo, instanceName, sourceBeforeMarker string) (Result, []Diagnostic) {
	var diags []Diagnostic

	ports := selectPorts(def.Ports, info.ManualPorts, info.FilterRegex, &diags)
	groups := groupPorts(cfg.Grouping, ports)

	type line struct {
		portName string
		signal   string
		comment  bool
		header   string
	}
	var lines []line
	var unconnected []string
	maxNameLen := 0

	for _, g := range groups {
		if len(g.ports) == 0 {
			continue
		}
		if cfg.Grouping == config.GroupByDirection {
			lines = append(lines, line{comment: true, header: g.header})
		}
		for _, p := range g.ports {
			res, d := template.Match(info.Template, instanceName, p)
			for _, dd := range d {
				diags = append(diags, Diagnostic{Message: dd.Message})
			}
			signal, unconn, d2 := adapt(agg, instanceName, p, res)
			diags = append(diags, d2...)
			if unconn {
				unconnected = append(unconnected, p.Name)
				lines = append(lines, line{portName: p.Name, signal: ""})
			} else {
				lines = append(lines, line{portName: p.Name, signal: signal})
			}
			if len(p.Name) > maxNameLen {
				maxNameLen = len(p.Name)
			}
		}
	}

	if len(lines) == 0 {
		return Result{Text: ""}, diags
	}

	baseIndent := info.Indent
	if baseIndent == "" {
		baseIndent = cfg.Indent
	}
	inner := baseIndent + cfg.Indent

	var b strings.Builder
	leadingComma := needsLeadingComma(info.ManualPorts, sourceBeforeMarker)

	// The connecting comma separates the new text from whatever the
	// marker followed (a manual connection with no trailing comma); it
	// must come immediately, before the first emitted line — whether
	// that line is a group-header comment or a connection — not after
	// it, or it ends up glued onto the comment text instead of the list.
	if leadingComma {
		b.WriteString(",")
	}

	firstPort := true
	for _, l := range lines {
		if l.comment {
			b.WriteString("\n" + inner + l.header)
			continue
		}
		if !firstPort {
			b.WriteString(",")
		}
		firstPort = false

		width := len(l.portName)
		if cfg.Alignment {
			width = maxNameLen
		}
		b.WriteString("\n" + inner + "." + pad(l.portName, width) + " (" + l.signal + ")")
	}
	b.WriteString("\n" + baseIndent)

	return Result{Text: b.String(), Unconnected: unconnected}, diags
}

// pad right-pads name with spaces to width, so that the parens of every
// connection of the instance line up in the same column (Generate passes
// the longest port name across all groups).
func pad(name string, width int) string {
	if len(name) >= width {
		return name
	}
	return name + strings.Repeat(" ", width-len(name))
}

type portGroup struct {
	header string
	ports  []model.PortInfo
}

func selectPorts(all []model.PortInfo, manual map[string]bool, filterRegex string, diags *[]Diagnostic) []model.PortInfo {
	var re *regexp.Regexp
	if filterRegex != "" {
		m, err := regexp.Compile(filterRegex)
		if err != nil {
			*diags = append(*diags, Diagnostic{Message: fmt.Sprintf("invalid AUTOINST filter regex %q: %v", filterRegex, err)})
		} else {
			re = m
		}
	}

	var out []model.PortInfo
	for _, p := range all {
		if manual[p.Name] {
			continue
		}
		if re != nil && !re.MatchString(p.Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func groupPorts(grouping config.PortGrouping, ports []model.PortInfo) []portGroup {
	if grouping == config.GroupAlphabetical {
		sorted := append([]model.PortInfo(nil), ports...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		return []portGroup{{ports: sorted}}
	}

	var outputs, inouts, inputs []model.PortInfo
	for _, p := range ports {
		switch p.Direction {
		case svast.DirOutput:
			outputs = append(outputs, p)
		case svast.DirInout:
			inouts = append(inouts, p)
		default:
			inputs = append(inputs, p)
		}
	}
	return []portGroup{
		{header: "// Outputs", ports: outputs},
		{header: "// Inouts", ports: inouts},
		{header: "// Inputs", ports: inputs},
	}
}

// adapt applies spec.md §4.5's width-adaptation table. It returns the
// emitted signal text and whether the port should render as unconnected.
func adapt(agg *aggregator.Aggregator, instanceName string, port model.PortInfo, res template.MatchResult) (string, bool, []Diagnostic) {
	var diags []Diagnostic
	expr := strings.TrimSpace(res.SignalName)

	if template.IsUnconnected(expr) {
		return "", true, diags
	}
	if template.IsConstant(expr) {
		return template.FormatConstant(expr), false, diags
	}

	if res.MatchedRule {
		// Explicit template choices are emitted verbatim (spec.md §4.5).
		return expr, false, diags
	}

	net, ok := agg.NetInfo(expr)
	if !ok {
		return expr, false, diags
	}

	switch {
	case net.Width == port.Width:
		return expr, false, diags
	case port.Width < net.Width && port.Width == 1:
		return expr + "[0]", false, diags
	case port.Width < net.Width && port.Width > 1:
		return fmt.Sprintf("%s[%d:0]", expr, port.Width-1), false, diags
	case port.Width > net.Width && port.Direction == svast.DirInput:
		return fmt.Sprintf("{'0, %s}", expr), false, diags
	case port.Width > net.Width && port.Direction == svast.DirOutput:
		helper := fmt.Sprintf("unused_%s_%s", expr, instanceName)
		agg.AddUnusedSignal(helper, port.Width-net.Width)
		return fmt.Sprintf("{%s, %s}", helper, expr), false, diags
	case port.Width > net.Width && port.Direction == svast.DirInout:
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("inout port %q wider than connected signal %q; bidirectional extension is ambiguous", port.Name, expr)})
		return expr, false, diags
	}

	return expr, false, diags
}

// needsLeadingComma implements spec.md §4.5's leading-comma heuristic:
// when manual ports exist before the marker, search backwards from the
// marker for the last non-whitespace character; prefix with a comma
// unless it already is one.
func needsLeadingComma(manualPorts map[string]bool, sourceBeforeMarker string) bool {
	if len(manualPorts) == 0 {
		return false
	}
	s := strings.TrimRight(sourceBeforeMarker, " \t\r\n")
	if s == "" {
		return false
	}
	return s[len(s)-1] != ','
}

// IdempotentReplacement compares generated text byte-for-byte against
// the original source span it would replace (spec.md §4.5's idempotence
// guard), returning true when no replacement should be queued.
func IdempotentReplacement(original, generated string) bool {
	return original == generated
}

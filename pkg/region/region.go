// Package region implements the AUTOLOGIC and AUTOPORTS block
// generators of spec.md §4.6: producing net declaration blocks and ANSI
// port list text, fenced with the canonical begin/end comments.
package region

import (
	"fmt"
	"sort"
	"strings"

	"github.com/autosv/autosv/pkg/aggregator"
	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/model"
)

// GenerateLogic produces the AUTOLOGIC replacement text for the span
// starting at info.MarkerEnd (fresh insertion) or info.FenceStart
// (re-expansion, per the caller's choice of start/end) and ending at
// the appropriate boundary. declared is every net name the user already
// declared outside any AUTOLOGIC fence; it is excluded from the emitted
// set.
func GenerateLogic(cfg *config.Config, agg *aggregator.Aggregator, kind model.AutoMarkerKind, indent string, declared map[string]bool) string {
	nets := declaredSet(agg, declared)
	if len(nets) == 0 {
		return ""
	}

	keyword := kind.DeclKeyword()
	inner := indent + cfg.Indent

	var lines []string
	lines = append(lines, indent+"// Beginning of automatic logic")
	for _, n := range nets {
		rangeText := rangeTextFor(cfg, n)
		if rangeText == "" {
			lines = append(lines, fmt.Sprintf("%s%s %s;", inner, keyword, n.Name))
		} else {
			lines = append(lines, fmt.Sprintf("%s%s %s %s;", inner, keyword, rangeText, n.Name))
		}
	}
	lines = append(lines, indent+"// End of automatics")

	return "\n" + strings.Join(lines, "\n")
}

// declaredSet computes internal_nets() ∪ unused_bit_helpers minus any
// name already in declared, sorted by name for determinism.
func declaredSet(agg *aggregator.Aggregator, declared map[string]bool) []model.NetInfo {
	seen := make(map[string]bool)
	var out []model.NetInfo
	for _, n := range agg.InternalNets() {
		if declared[n.Name] || seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		out = append(out, n)
	}
	for _, n := range agg.UnusedSignals() {
		if declared[n.Name] || seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func rangeTextFor(cfg *config.Config, n model.NetInfo) string {
	if n.Width <= 1 {
		return ""
	}
	if !cfg.ResolvedRanges && n.RangeStr != "" {
		return n.RangeStr
	}
	return fmt.Sprintf("[%d:0]", n.Width-1)
}

// GeneratePorts produces the AUTOPORTS replacement text for the span
// from the end of the `/*AUTOPORTS*/` marker to the module header's
// close paren. existingPorts are port names already declared before
// the marker and are excluded from the emitted set.
func GeneratePorts(cfg *config.Config, agg *aggregator.Aggregator, existingPorts []string) string {
	exclude := make(map[string]bool, len(existingPorts))
	for _, p := range existingPorts {
		exclude[p] = true
	}

	var entries []string
	for _, n := range agg.ExternalOutputs() {
		if exclude[n.Name] {
			continue
		}
		entries = append(entries, ansiEntry("output", cfg, n))
	}
	for _, n := range agg.Inouts() {
		if exclude[n.Name] {
			continue
		}
		entries = append(entries, ansiEntry("inout", cfg, n))
	}
	for _, n := range agg.ExternalInputs() {
		if exclude[n.Name] {
			continue
		}
		entries = append(entries, ansiEntry("input", cfg, n))
	}

	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for i, e := range entries {
		b.WriteString("\n    " + e)
		if i < len(entries)-1 {
			b.WriteString(",")
		}
	}
	return b.String()
}

func ansiEntry(dir string, cfg *config.Config, n model.NetInfo) string {
	rangeText := rangeTextFor(cfg, n)
	if rangeText == "" {
		return fmt.Sprintf("%s logic %s", dir, n.Name)
	}
	return fmt.Sprintf("%s logic %s %s", dir, rangeText, n.Name)
}

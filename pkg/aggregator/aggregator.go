// Package aggregator implements the per-module signal aggregator of
// spec.md §4.4: classifying every net touched by an instance connection
// as external input, external output, inout, or internal, and
// reconciling widths and range text across instances sharing a name.
package aggregator

import (
	"sort"
	"strings"

	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
	"github.com/autosv/autosv/pkg/template"
)

type netEntry struct {
	name           string
	width          int
	rangeStr       string
	rangeAgrees    bool
	rangeSeen      bool
	driven         bool
	consumed       bool
	inoutConnected bool
}

// Origin records which instance/port an identifier observation came from,
// kept for diagnostics only.
type Origin struct {
	Identifier   string
	InstanceName string
	PortName     string
}

// Aggregator is the per-module net table.
type Aggregator struct {
	nets     map[string]*netEntry
	order    []string
	origins  []Origin
	unused   map[string]int // unused_<signal>_<instance> -> width
	unusedOrder []string
}

// New creates an empty aggregator for one module.
func New() *Aggregator {
	return &Aggregator{
		nets:   make(map[string]*netEntry),
		unused: make(map[string]int),
	}
}

func (a *Aggregator) entry(name string) *netEntry {
	e, ok := a.nets[name]
	if !ok {
		e = &netEntry{name: name}
		a.nets[name] = e
		a.order = append(a.order, name)
	}
	return e
}

// Observe records one resolved connection against the target port's
// direction and width, per spec.md §4.4 steps 1-3. instanceName and
// portName are carried only for diagnostics.
func (a *Aggregator) Observe(instanceName string, conn model.PortConnection, port model.PortInfo) {
	if conn.IsConstant || conn.IsUnconnected || template.IsUnconnected(conn.SignalExpr) || template.IsConstant(conn.SignalExpr) {
		return
	}

	for _, ident := range extractIdentifiers(conn.SignalExpr) {
		e := a.entry(ident)
		switch port.Direction {
		case svast.DirOutput:
			e.driven = true
		case svast.DirInput:
			e.consumed = true
		case svast.DirInout:
			e.driven = true
			e.consumed = true
			e.inoutConnected = true
		}
		if port.Width > e.width {
			e.width = port.Width
		}
		if !e.rangeSeen {
			e.rangeSeen = true
			e.rangeStr = port.RangeStr
			e.rangeAgrees = true
		} else if e.rangeStr != port.RangeStr {
			e.rangeAgrees = false
		}
		a.origins = append(a.origins, Origin{Identifier: ident, InstanceName: instanceName, PortName: port.Name})
	}
}

// extractIdentifiers implements spec.md §4.4 step 1: split a
// concatenation on top-level commas, drop constant elements, strip
// trailing bit-selects, and record the leading identifier of each
// remaining element. A non-concatenation expression yields exactly one
// identifier.
func extractIdentifiers(expr string) []string {
	e := strings.TrimSpace(expr)
	if e == "" {
		return nil
	}
	if strings.HasPrefix(e, "{") && strings.HasSuffix(e, "}") {
		inner := e[1 : len(e)-1]
		parts := splitTopLevelCommas(inner)
		var idents []string
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" || template.IsConstant(p) {
				continue
			}
			if id := bareIdentifier(p); id != "" {
				idents = append(idents, id)
			}
		}
		return idents
	}
	if id := bareIdentifier(e); id != "" {
		return []string{id}
	}
	return nil
}

func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

// bareIdentifier strips a trailing "[...]" bit-select/slice and returns
// the leading identifier, or "" if expr does not start with one.
func bareIdentifier(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	i := 0
	for i < len(expr) && svast.IsIdentByte(expr[i]) {
		i++
	}
	if i == 0 {
		return ""
	}
	return expr[:i]
}

// ExternalInputs returns nets consumed but never driven (and not
// inout-connected), sorted by name.
func (a *Aggregator) ExternalInputs() []model.NetInfo {
	return a.filtered(func(e *netEntry) bool {
		return e.consumed && !e.driven && !e.inoutConnected
	})
}

// ExternalOutputs returns nets driven but never consumed.
func (a *Aggregator) ExternalOutputs() []model.NetInfo {
	return a.filtered(func(e *netEntry) bool {
		return e.driven && !e.consumed && !e.inoutConnected
	})
}

// Inouts returns nets connected to at least one inout port.
func (a *Aggregator) Inouts() []model.NetInfo {
	return a.filtered(func(e *netEntry) bool {
		return e.inoutConnected
	})
}

// InternalNets returns nets both driven and consumed, excluding inouts.
func (a *Aggregator) InternalNets() []model.NetInfo {
	return a.filtered(func(e *netEntry) bool {
		return e.driven && e.consumed && !e.inoutConnected
	})
}

func (a *Aggregator) filtered(pred func(*netEntry) bool) []model.NetInfo {
	var out []model.NetInfo
	for _, name := range a.order {
		e := a.nets[name]
		if pred(e) {
			out = append(out, toNetInfo(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func toNetInfo(e *netEntry) model.NetInfo {
	rangeStr := ""
	if e.rangeAgrees {
		rangeStr = e.rangeStr
	}
	return model.NetInfo{Name: e.name, Width: e.width, RangeStr: rangeStr}
}

// NetInfo returns the full aggregated view of name, if observed.
func (a *Aggregator) NetInfo(name string) (model.NetInfo, bool) {
	e, ok := a.nets[name]
	if !ok {
		return model.NetInfo{}, false
	}
	return toNetInfo(e), true
}

// AddUnusedSignal registers an unused_<signal>_<instance> helper net of
// the given width, as queued by the connection generator (spec.md §4.5)
// when padding a too-narrow output connection.
func (a *Aggregator) AddUnusedSignal(name string, width int) {
	if _, exists := a.unused[name]; !exists {
		a.unusedOrder = append(a.unusedOrder, name)
	}
	a.unused[name] = width
}

// UnusedSignals returns the registered unused-bit helper nets, in
// registration order.
func (a *Aggregator) UnusedSignals() []model.NetInfo {
	out := make([]model.NetInfo, 0, len(a.unusedOrder))
	for _, name := range a.unusedOrder {
		out = append(out, model.NetInfo{Name: name, Width: a.unused[name]})
	}
	return out
}

// Origins returns every identifier observation recorded so far, for
// diagnostics.
func (a *Aggregator) Origins() []Origin {
	return a.origins
}

// Package model defines the data types shared by every pass of the AUTO
// expansion pipeline: resolved port information, per-instance
// connections, aggregated net info, templates, marker sites, and the
// replacement edits the applier commits. See spec.md §3.
package model

import "github.com/autosv/autosv/pkg/svast"

// PortInfo is one port of a target module as produced by the compiler
// (pkg/compilation). compilation.FromFiles builds them for every ANSI
// module it finds, keyed by module name for the run.
type PortInfo struct {
	Name      string
	Direction svast.Direction
	Width     int    // bit count, always >= 1 (packed dimensions multiplied)
	RangeStr  string // original textual packed range, "" if none
}

// ModuleDef is the compiler's resolved view of a target module: its
// ordered port list.
type ModuleDef struct {
	Name  string
	Ports []PortInfo
}

// PortByName returns the port with the given name, if any.
func (m *ModuleDef) PortByName(name string) (PortInfo, bool) {
	for _, p := range m.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortInfo{}, false
}

// PortConnection is one resolved connection at an instance.
type PortConnection struct {
	PortName       string
	Direction      svast.Direction
	SignalExpr     string
	IsUnconnected  bool
	IsConstant     bool
	MatchedRule    bool // true when a template rule produced SignalExpr explicitly
}

// NetInfo is the aggregated view of a single net name within a module.
type NetInfo struct {
	Name     string
	Width    int
	RangeStr string // preserved only when every observation agreed
}

// AutoTemplate is one AUTO_TEMPLATE directive.
type AutoTemplate struct {
	ModuleName      string
	InstancePattern string // "" means the default `\d+`
	Rules           []TemplateRule
	LineNumber      int
}

// TemplateRule is one `PORT_PATTERN => SIGNAL_EXPR` line of a template.
type TemplateRule struct {
	PortPattern string
	SignalExpr  string
}

// AutoMarkerKind distinguishes AUTOLOGIC from its deprecated aliases.
type AutoMarkerKind int

const (
	KindAutoLogic AutoMarkerKind = iota
	KindAutoReg
	KindAutoWire
)

// DeclKeyword returns the net-declaration keyword this marker kind emits.
func (k AutoMarkerKind) DeclKeyword() string {
	switch k {
	case KindAutoReg:
		return "reg"
	case KindAutoWire:
		return "wire"
	default:
		return "logic"
	}
}

// AutoInstInfo is one `/*AUTOINST*/` marker site.
type AutoInstInfo struct {
	ModuleType    string
	InstanceName  string
	ManualPorts   map[string]bool
	MarkerEnd     int // one past the trailing "*/"
	CloseParenPos int // the instance's closing ')'
	FilterRegex   string // from AUTOINST("FILTER_REGEX"), "" if none
	Template      *AutoTemplate
	LineNumber    int
	Indent        string // detected indentation of the instantiation's own line
}

// AutoLogicInfo is one `/*AUTOLOGIC*/` (or AUTOREG/AUTOWIRE alias) marker site.
type AutoLogicInfo struct {
	Kind       AutoMarkerKind
	MarkerEnd  int
	FenceStart int // start of the line holding an existing "// Beginning of automatic logic" fence, -1 if none
	FenceEnd   int // end of the matching "// End of automatics" fence, -1 if none
	Indent     string
}

// AutoPortsInfo is one `/*AUTOPORTS*/` marker site.
type AutoPortsInfo struct {
	MarkerEnd      int
	HeaderCloseParen int // module header's closing ')'
	ExistingPorts  []string // ports declared before the marker
}

// Replacement is one queued edit: replace source[Start:End) with NewText.
type Replacement struct {
	Start, End int
	NewText    string
	Label      string
}

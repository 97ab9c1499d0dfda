// Package compilation stands in for the elaborated compilation graph
// spec.md §6 treats as an external collaborator: given a module type
// name, it returns the ordered list of resolved ports. It is built once
// per run from every parsed source file and is read-only thereafter
// (spec.md §5).
package compilation

import (
	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
)

// Compilation resolves module type names to their port lists.
type Compilation interface {
	LookupModule(name string) (*model.ModuleDef, bool)
}

// MemCompilation is an in-memory Compilation built by scanning a set of
// parsed files for module declarations with ANSI port lists.
type MemCompilation struct {
	modules map[string]*model.ModuleDef
	// NonANSI records modules whose header could not be resolved because
	// the port list was not ANSI, so callers can distinguish "unknown
	// module" from "known module, unusable port list".
	NonANSI map[string]bool
}

// FromFiles builds a MemCompilation from every module declared across
// the given files. Later files do not override earlier declarations of
// the same module name (first definition wins); a redefinition is dropped
// without a diagnostic.
func FromFiles(files []*svast.File) *MemCompilation {
	c := &MemCompilation{
		modules: make(map[string]*model.ModuleDef),
		NonANSI: make(map[string]bool),
	}
	for _, f := range files {
		for _, m := range f.Modules {
			if _, exists := c.modules[m.Name]; exists {
				continue
			}
			if m.Ports == nil {
				c.modules[m.Name] = &model.ModuleDef{Name: m.Name}
				continue
			}
			if m.Ports.NonANSI {
				c.NonANSI[m.Name] = true
				continue
			}
			def := &model.ModuleDef{Name: m.Name}
			for _, p := range m.Ports.Ports {
				def.Ports = append(def.Ports, model.PortInfo{
					Name:      p.Name,
					Direction: p.Direction,
					Width:     widthOf(p.RangeStr),
					RangeStr:  p.RangeStr,
				})
			}
			c.modules[m.Name] = def
		}
	}
	return c
}

func (c *MemCompilation) LookupModule(name string) (*model.ModuleDef, bool) {
	def, ok := c.modules[name]
	return def, ok
}

// widthOf computes the bit width implied by a packed range's textual form
// when it is a simple numeric range like "[7:0]" or "[15:0]". Parameterized
// ranges (e.g. "[WIDTH-1:0]") cannot be evaluated without the elaborator's
// constant folding, so they conservatively resolve to width 1 with the
// range text preserved for display; callers needing accurate widths for
// parameterized ports should consult a real elaborator (out of scope,
// spec.md §1).
func widthOf(rangeStr string) int {
	if rangeStr == "" {
		return 1
	}
	hi, lo, ok := parseNumericRange(rangeStr)
	if !ok {
		return 1
	}
	w := hi - lo + 1
	if w < 1 {
		return 1
	}
	return w
}

func parseNumericRange(rangeStr string) (hi, lo int, ok bool) {
	s := rangeStr
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return 0, 0, false
	}
	s = s[1 : len(s)-1]
	colon := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return 0, 0, false
	}
	hiStr, loStr := s[:colon], s[colon+1:]
	hiVal, hiOK := atoiStrict(hiStr)
	loVal, loOK := atoiStrict(loStr)
	if !hiOK || !loOK {
		return 0, 0, false
	}
	return hiVal, loVal, true
}

func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

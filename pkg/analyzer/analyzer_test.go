package analyzer

import (
	"strings"
	"testing"

	"github.com/autosv/autosv/pkg/compilation"
	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
)

// buildFile hand-assembles a minimal single-module svast.File around the
// given source text, wiring offsets explicitly rather than going through
// the scanner, so these tests exercise the analyzer's own orchestration
// logic independent of parser correctness.
func buildFile(source string, mod *svast.ModuleDeclaration) *svast.File {
	return &svast.File{
		Source: []byte(source),
		Path:   "top.sv",
		Modules: []*svast.ModuleDeclaration{mod},
	}
}

func TestAnalyzeFile_NoMarkersIsIdentity(t *testing.T) {
	src := "module top;\nendmodule\n"
	f := buildFile(src, &svast.ModuleDeclaration{
		Name:       "top",
		HeaderEnd:  len("module top;\n"),
		BodyEnd:    len(src) - len("endmodule\n"),
	})
	comp := compilation.FromFiles(nil)

	a := New(config.DefaultConfig(), nil)
	res, err := a.AnalyzeFile(f, comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected no changes for a marker-free module")
	}
	if string(res.Output) != src {
		t.Fatalf("got %q want %q", res.Output, src)
	}
}

func TestAnalyzeFile_AutoInstExpandsUnmatchedPortsOnly(t *testing.T) {
	// module fifo(input clk, input [7:0] din, output [7:0] dout);
	fifoDef := &model.ModuleDef{
		Name: "fifo",
		Ports: []model.PortInfo{
			{Name: "clk", Direction: svast.DirInput, Width: 1},
			{Name: "din", Direction: svast.DirInput, Width: 8, RangeStr: "[7:0]"},
			{Name: "dout", Direction: svast.DirOutput, Width: 8, RangeStr: "[7:0]"},
		},
	}

	src := "module top;\n  fifo u_fifo0 ( .clk(clk), /*AUTOINST*/ );\nendmodule\n"
	openParen := strings.Index(src, "(")
	closeParen := strings.LastIndex(src, ")")
	clkStart := strings.Index(src, ".clk(clk)")

	inst := &svast.HierarchicalInstance{
		InstanceName: "u_fifo0",
		OpenParen:    openParen,
		CloseParen:   closeParen,
		RawText:      src[openParen+1 : closeParen],
		Connections: []*svast.NamedPortConnection{
			{PortName: "clk", Expr: "clk", Start: clkStart},
		},
	}
	hi := &svast.HierarchyInstantiation{
		ModuleType: "fifo",
		Instances:  []*svast.HierarchicalInstance{inst},
		Start:      strings.Index(src, "fifo u_fifo0"),
	}
	mod := &svast.ModuleDeclaration{
		Name:            "top",
		HeaderEnd:       strings.Index(src, "\n") + 1,
		BodyEnd:         strings.Index(src, "endmodule"),
		Instantiations:  []*svast.HierarchyInstantiation{hi},
	}

	f := buildFile(src, mod)
	comp := compilationWith(fifoDef)

	a := New(config.DefaultConfig(), nil)
	res, err := a.AnalyzeFile(f, comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected a replacement to be queued")
	}
	out := string(res.Output)
	if strings.Contains(out, ".clk(") == false {
		t.Fatalf("manual connection should be preserved: %q", out)
	}
	if !strings.Contains(out, ".din  (din)") || !strings.Contains(out, ".dout (dout)") {
		t.Fatalf("expected auto-filled ports din/dout, got %q", out)
	}
	// clk must not be duplicated by the generator.
	if strings.Count(out, ".clk(") != 1 {
		t.Fatalf("clk should not be auto-generated again: %q", out)
	}
}

func TestAnalyzeFile_UnresolvedModuleLenientPreservesInstance(t *testing.T) {
	src := "module top;\n  ghost u0 ( /*AUTOINST*/ );\nendmodule\n"
	hi := &svast.HierarchyInstantiation{
		ModuleType: "ghost",
		Instances: []*svast.HierarchicalInstance{
			{InstanceName: "u0", OpenParen: strings.Index(src, "("), CloseParen: strings.LastIndex(src, ")"), RawText: "/*AUTOINST*/ "},
		},
		Start: strings.Index(src, "ghost u0"),
	}
	mod := &svast.ModuleDeclaration{
		Name:           "top",
		HeaderEnd:      strings.Index(src, "\n") + 1,
		BodyEnd:        strings.Index(src, "endmodule"),
		Instantiations: []*svast.HierarchyInstantiation{hi},
	}
	f := buildFile(src, mod)
	comp := compilation.FromFiles(nil)

	a := New(config.DefaultConfig(), nil)
	res, err := a.AnalyzeFile(f, comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed {
		t.Fatalf("unresolved module should skip its AUTOINST entirely")
	}
	found := false
	for _, d := range res.Diagnostics.Diagnostics() {
		if d.Category == "unresolved_module" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unresolved_module diagnostic")
	}
}

func compilationWith(defs ...*model.ModuleDef) compilation.Compilation {
	files := []*svast.File{{
		Modules: modulesFromDefs(defs),
	}}
	return compilation.FromFiles(files)
}

// modulesFromDefs builds minimal ANSI-port ModuleDeclarations so
// compilation.FromFiles resolves the given PortInfo sets exactly.
func modulesFromDefs(defs []*model.ModuleDef) []*svast.ModuleDeclaration {
	var mods []*svast.ModuleDeclaration
	for _, def := range defs {
		var ports []*svast.ImplicitAnsiPort
		for _, p := range def.Ports {
			ports = append(ports, &svast.ImplicitAnsiPort{Name: p.Name, Direction: p.Direction, RangeStr: p.RangeStr})
		}
		mods = append(mods, &svast.ModuleDeclaration{
			Name:  def.Name,
			Ports: &svast.AnsiPortList{Ports: ports},
		})
	}
	return mods
}

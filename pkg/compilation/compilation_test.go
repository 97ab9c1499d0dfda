package compilation

import (
	"testing"

	"github.com/autosv/autosv/pkg/svast"
)

func TestFromFiles_ResolvesAnsiPorts(t *testing.T) {
	files := []*svast.File{
		{
			Modules: []*svast.ModuleDeclaration{
				{
					Name: "fifo",
					Ports: &svast.AnsiPortList{
						Ports: []*svast.ImplicitAnsiPort{
							{Name: "clk", Direction: svast.DirInput},
							{Name: "din", Direction: svast.DirInput, RangeStr: "[7:0]"},
							{Name: "dout", Direction: svast.DirOutput, RangeStr: "[15:0]"},
						},
					},
				},
			},
		},
	}
	comp := FromFiles(files)
	def, ok := comp.LookupModule("fifo")
	if !ok {
		t.Fatalf("expected fifo to resolve")
	}
	if len(def.Ports) != 3 {
		t.Fatalf("expected 3 ports, got %d", len(def.Ports))
	}
	din, ok := def.PortByName("din")
	if !ok || din.Width != 8 {
		t.Fatalf("expected din width 8, got %+v", din)
	}
	dout, ok := def.PortByName("dout")
	if !ok || dout.Width != 16 {
		t.Fatalf("expected dout width 16, got %+v", dout)
	}
}

func TestFromFiles_FirstDefinitionWins(t *testing.T) {
	files := []*svast.File{
		{Modules: []*svast.ModuleDeclaration{{Name: "m", Ports: &svast.AnsiPortList{Ports: []*svast.ImplicitAnsiPort{{Name: "a"}}}}}},
		{Modules: []*svast.ModuleDeclaration{{Name: "m", Ports: &svast.AnsiPortList{Ports: []*svast.ImplicitAnsiPort{{Name: "b"}}}}}},
	}
	comp := FromFiles(files)
	def, ok := comp.LookupModule("m")
	if !ok || len(def.Ports) != 1 || def.Ports[0].Name != "a" {
		t.Fatalf("expected the first definition to win, got %+v", def)
	}
}

func TestFromFiles_NonANSITrackedSeparately(t *testing.T) {
	files := []*svast.File{
		{Modules: []*svast.ModuleDeclaration{{Name: "legacy", Ports: &svast.AnsiPortList{NonANSI: true}}}},
	}
	comp := FromFiles(files)
	if _, ok := comp.LookupModule("legacy"); ok {
		t.Fatalf("a non-ANSI module should not resolve to a usable port list")
	}
	if !comp.NonANSI["legacy"] {
		t.Fatalf("expected legacy to be recorded as NonANSI")
	}
}

func TestFromFiles_ParameterizedRangeDefaultsToWidthOne(t *testing.T) {
	files := []*svast.File{
		{Modules: []*svast.ModuleDeclaration{{Name: "m", Ports: &svast.AnsiPortList{Ports: []*svast.ImplicitAnsiPort{
			{Name: "data", Direction: svast.DirInput, RangeStr: "[WIDTH-1:0]"},
		}}}}},
	}
	comp := FromFiles(files)
	def, _ := comp.LookupModule("m")
	p, _ := def.PortByName("data")
	if p.Width != 1 {
		t.Fatalf("expected conservative width 1 for a parameterized range, got %d", p.Width)
	}
	if p.RangeStr != "[WIDTH-1:0]" {
		t.Fatalf("expected the original range text preserved, got %q", p.RangeStr)
	}
}

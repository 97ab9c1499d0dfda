package model

import (
	"testing"

	"github.com/autosv/autosv/pkg/svast"
)

func TestModuleDef_PortByName(t *testing.T) {
	def := &ModuleDef{
		Name: "fifo",
		Ports: []PortInfo{
			{Name: "clk", Direction: svast.DirInput, Width: 1},
			{Name: "dout", Direction: svast.DirOutput, Width: 8},
		},
	}

	p, ok := def.PortByName("dout")
	if !ok {
		t.Fatalf("expected to find port %q", "dout")
	}
	if p.Width != 8 || p.Direction != svast.DirOutput {
		t.Fatalf("unexpected port: %+v", p)
	}

	if _, ok := def.PortByName("missing"); ok {
		t.Fatalf("expected no match for an absent port name")
	}
}

func TestAutoMarkerKind_DeclKeyword(t *testing.T) {
	cases := []struct {
		kind AutoMarkerKind
		want string
	}{
		{KindAutoLogic, "logic"},
		{KindAutoReg, "reg"},
		{KindAutoWire, "wire"},
	}
	for _, c := range cases {
		if got := c.kind.DeclKeyword(); got != c.want {
			t.Errorf("DeclKeyword(%v) = %q, want %q", c.kind, got, c.want)
		}
	}
}

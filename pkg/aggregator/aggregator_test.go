package aggregator

import (
	"testing"

	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/svast"
)

func TestObserve_ClassifiesDirections(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{PortName: "q", SignalExpr: "sig_a"}, model.PortInfo{Name: "q", Direction: svast.DirOutput, Width: 4, RangeStr: "[3:0]"})
	a.Observe("u1", model.PortConnection{PortName: "d", SignalExpr: "sig_a"}, model.PortInfo{Name: "d", Direction: svast.DirInput, Width: 4, RangeStr: "[3:0]"})

	internal := a.InternalNets()
	if len(internal) != 1 || internal[0].Name != "sig_a" || internal[0].Width != 4 {
		t.Fatalf("got %+v", internal)
	}
	if len(a.ExternalInputs()) != 0 || len(a.ExternalOutputs()) != 0 {
		t.Fatalf("expected no external signals")
	}
}

func TestObserve_ExternalInputOutput(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{PortName: "clk", SignalExpr: "clk_in"}, model.PortInfo{Name: "clk", Direction: svast.DirInput, Width: 1})
	a.Observe("u0", model.PortConnection{PortName: "q", SignalExpr: "out_sig"}, model.PortInfo{Name: "q", Direction: svast.DirOutput, Width: 1})

	in := a.ExternalInputs()
	out := a.ExternalOutputs()
	if len(in) != 1 || in[0].Name != "clk_in" {
		t.Fatalf("got inputs %+v", in)
	}
	if len(out) != 1 || out[0].Name != "out_sig" {
		t.Fatalf("got outputs %+v", out)
	}
}

func TestObserve_Inout(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{PortName: "pad", SignalExpr: "io_pad"}, model.PortInfo{Name: "pad", Direction: svast.DirInout, Width: 1})
	inouts := a.Inouts()
	if len(inouts) != 1 || inouts[0].Name != "io_pad" {
		t.Fatalf("got %+v", inouts)
	}
	if len(a.InternalNets()) != 0 {
		t.Fatalf("inout must not also appear as internal")
	}
}

func TestObserve_SkipsConstantAndUnconnected(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{SignalExpr: "1'b0"}, model.PortInfo{Name: "rst", Direction: svast.DirInput})
	a.Observe("u0", model.PortConnection{SignalExpr: "_", IsUnconnected: true}, model.PortInfo{Name: "unused", Direction: svast.DirOutput})
	if len(a.ExternalInputs()) != 0 || len(a.ExternalOutputs()) != 0 {
		t.Fatalf("constant/unconnected connections must not be aggregated")
	}
}

func TestObserve_ConcatenationDecomposition(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{SignalExpr: "{a_hi, 1'b0, b_lo[3:0]}"}, model.PortInfo{Name: "p", Direction: svast.DirOutput, Width: 6})
	names := map[string]bool{}
	for _, n := range a.ExternalOutputs() {
		names[n.Name] = true
	}
	if !names["a_hi"] || !names["b_lo"] || names["1'b0"] {
		t.Fatalf("got %+v", a.ExternalOutputs())
	}
}

func TestObserve_WidthIsMax(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{SignalExpr: "bus"}, model.PortInfo{Name: "a", Direction: svast.DirOutput, Width: 4})
	a.Observe("u1", model.PortConnection{SignalExpr: "bus"}, model.PortInfo{Name: "b", Direction: svast.DirInput, Width: 8})
	info, ok := a.NetInfo("bus")
	if !ok || info.Width != 8 {
		t.Fatalf("got %+v", info)
	}
}

func TestObserve_RangeClearedOnDisagreement(t *testing.T) {
	a := New()
	a.Observe("u0", model.PortConnection{SignalExpr: "bus"}, model.PortInfo{Name: "a", Direction: svast.DirOutput, Width: 4, RangeStr: "[3:0]"})
	a.Observe("u1", model.PortConnection{SignalExpr: "bus"}, model.PortInfo{Name: "b", Direction: svast.DirInput, Width: 4, RangeStr: "[0:3]"})
	info, _ := a.NetInfo("bus")
	if info.RangeStr != "" {
		t.Fatalf("expected cleared range_str on disagreement, got %q", info.RangeStr)
	}
}

func TestAddUnusedSignal(t *testing.T) {
	a := New()
	a.AddUnusedSignal("unused_bus_u0", 3)
	got := a.UnusedSignals()
	if len(got) != 1 || got[0].Name != "unused_bus_u0" || got[0].Width != 3 {
		t.Fatalf("got %+v", got)
	}
}

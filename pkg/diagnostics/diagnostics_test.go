package diagnostics

import (
	"strings"
	"testing"
)

func TestLineColumn(t *testing.T) {
	src := []byte("line1\nline2\nline3")
	line, col := LineColumn(src, 0)
	if line != 1 || col != 1 {
		t.Fatalf("got line=%d col=%d", line, col)
	}
	line, col = LineColumn(src, 6)
	if line != 2 || col != 1 {
		t.Fatalf("got line=%d col=%d", line, col)
	}
	line, col = LineColumn(src, 8)
	if line != 2 || col != 3 {
		t.Fatalf("got line=%d col=%d", line, col)
	}
}

func TestCollector_AddAtOffset(t *testing.T) {
	c := NewCollector()
	src := []byte("module top;\n  fifo u0 (/*AUTOINST*/);\nendmodule\n")
	c.AddAtOffset(Warning, CategoryUnresolvedModule, "top.sv", src, 20, "unresolved module fifo")

	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diags))
	}
	if diags[0].Line != 2 {
		t.Fatalf("expected line 2, got %d", diags[0].Line)
	}
	formatted := diags[0].Format()
	if !strings.Contains(formatted, "unresolved module fifo") {
		t.Fatalf("formatted output missing message: %q", formatted)
	}
}

func TestCollector_ExitCode(t *testing.T) {
	c := NewCollector()
	if c.ExitCode(false) != 0 || c.ExitCode(true) != 0 {
		t.Fatalf("empty collector should exit 0")
	}

	c.Add(Warning, CategoryConstantOnOutput, "f.sv", 1, 1, "constant assigned to output")
	if c.ExitCode(false) != 0 {
		t.Fatalf("lenient mode should not fail on warnings")
	}
	if c.ExitCode(true) != 1 {
		t.Fatalf("strict mode should exit 1 on warnings")
	}

	c.Add(Error, CategoryUnrecoverableIO, "f.sv", 1, 1, "missing input file")
	if c.ExitCode(false) != 2 || c.ExitCode(true) != 2 {
		t.Fatalf("any error should exit 2 regardless of strictness")
	}
}

func TestCollector_HasErrorsHasWarnings(t *testing.T) {
	c := NewCollector()
	if c.HasErrors() || c.HasWarnings() {
		t.Fatalf("empty collector should report neither")
	}
	c.Add(Warning, CategoryWidthConflict, "f.sv", 1, 1, "width mismatch")
	if c.HasErrors() || !c.HasWarnings() {
		t.Fatalf("expected warnings only")
	}
}

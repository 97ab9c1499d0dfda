package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_CallsBackOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "top.sv")
	if err := os.WriteFile(target, []byte("module top;\nendmodule\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	w, err := New([]string{target}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	got := make(chan string, 1)
	go w.Run(func(path string) {
		select {
		case got <- path:
		default:
		}
	})

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(target, []byte("module top;\n  /*AUTOLOGIC*/\nendmodule\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case path := <-got:
		if filepath.Base(path) != "top.sv" {
			t.Fatalf("got callback for %q, want top.sv", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a watch callback")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "top.sv")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(target, []byte("module top; endmodule\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	w, err := New([]string{target}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	got := make(chan string, 1)
	go w.Run(func(path string) { got <- path })

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(other, []byte("unrelated"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case path := <-got:
		t.Fatalf("unexpected callback for %q", path)
	case <-time.After(300 * time.Millisecond):
		// expected: no callback for an unwatched file
	}
}

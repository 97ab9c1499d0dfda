package lsp

import (
	"testing"

	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/logging"
)

func TestNewServer_DefaultsConfigAndLogger(t *testing.T) {
	s, err := NewServer(ServerConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.logger == nil {
		t.Fatalf("expected a default no-op logger")
	}
	if s.cfg.Config == nil {
		t.Fatalf("expected a default loaded config")
	}
}

func TestNewServer_HonorsGivenDependencies(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Strictness = config.StrictnessStrict
	s, err := NewServer(ServerConfig{Logger: logging.NewNoOp(), Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.cfg.Config.Strictness != config.StrictnessStrict {
		t.Fatalf("expected the given config to be kept as-is")
	}
}

func TestPublishDiagnostics_NoConnIsNoOp(t *testing.T) {
	s, err := NewServer(ServerConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No connection has been set; this must not panic.
	s.publishDiagnostics("file:///tmp/top.sv", nil)
}

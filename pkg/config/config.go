// Package config provides configuration management for the autosv engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PortGrouping selects how AUTOINST-generated ports are ordered.
type PortGrouping string

const (
	// GroupByDirection emits outputs, then inouts, then inputs, each
	// under a "// Outputs"/"// Inouts"/"// Inputs" comment.
	GroupByDirection PortGrouping = "by_direction"

	// GroupAlphabetical emits ports in lexicographic order with no
	// group comments.
	GroupAlphabetical PortGrouping = "alphabetical"
)

// IsValid reports whether the grouping mode is recognized.
func (g PortGrouping) IsValid() bool {
	switch g {
	case GroupByDirection, GroupAlphabetical:
		return true
	default:
		return false
	}
}

// Strictness selects how diagnostics affect the exit code.
type Strictness string

const (
	// StrictnessLenient reports warnings but exits 0.
	StrictnessLenient Strictness = "lenient"

	// StrictnessStrict treats warnings as failures (exit 1).
	StrictnessStrict Strictness = "strict"
)

// IsValid reports whether the strictness mode is recognized.
func (s Strictness) IsValid() bool {
	switch s {
	case StrictnessLenient, StrictnessStrict:
		return true
	default:
		return false
	}
}

// MarkerConfig holds marker spelling overrides loaded from the
// `[markers]` table. The engine does not read them; it recognizes only
// the canonical spellings (spec.md §6).
type MarkerConfig struct {
	AutoInst  string `toml:"auto_inst"`
	AutoLogic string `toml:"auto_logic"`
	AutoPorts string `toml:"auto_ports"`
}

// Config is the complete autosv project configuration.
type Config struct {
	// Indent is the string used for one indentation level when
	// generating connection/declaration text.
	Indent string `toml:"indent"`

	// Alignment controls whether generated port connections are
	// column-aligned on the opening paren.
	Alignment bool `toml:"alignment"`

	// Grouping selects AUTOINST port ordering.
	// Valid values: "by_direction", "alphabetical"
	Grouping PortGrouping `toml:"grouping"`

	// Strictness selects how diagnostics affect the process exit code.
	// Valid values: "lenient", "strict"
	Strictness Strictness `toml:"strictness"`

	// ResolvedRanges, when true, always renders declared ranges as
	// `[width-1:0]` rather than preserving an agreeing source range_str.
	ResolvedRanges bool `toml:"resolved_ranges"`

	// LibDirs are `-y` library search directories.
	LibDirs []string `toml:"lib_dirs"`

	// LibExt are `+libext+` file extensions. They are recorded only; no
	// code searches the LibDirs entries with them.
	LibExt []string `toml:"lib_ext"`

	// IncDirs are `+incdir+` include directories. They are recorded only;
	// no code reads them.
	IncDirs []string `toml:"inc_dirs"`

	Markers MarkerConfig `toml:"markers"`
}

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() *Config {
	return &Config{
		Indent:         "  ",
		Alignment:      true,
		Grouping:       GroupByDirection,
		Strictness:     StrictnessLenient,
		ResolvedRanges: false,
		LibExt:         []string{".v", ".sv"},
		Markers: MarkerConfig{
			AutoInst:  "/*AUTOINST*/",
			AutoLogic: "/*AUTOLOGIC*/",
			AutoPorts: "/*AUTOPORTS*/",
		},
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. CLI flags (highest priority) - passed as overrides
// 2. Project autosv.toml (current directory)
// 3. User config (~/.autosv/config.toml)
// 4. Built-in defaults (lowest priority)
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".autosv", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "autosv.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		if overrides.Indent != "" {
			cfg.Indent = overrides.Indent
		}
		if overrides.Grouping != "" {
			cfg.Grouping = overrides.Grouping
		}
		if overrides.Strictness != "" {
			cfg.Strictness = overrides.Strictness
		}
		if overrides.LibDirs != nil {
			cfg.LibDirs = overrides.LibDirs
		}
		if overrides.LibExt != nil {
			cfg.LibExt = overrides.LibExt
		}
		if overrides.IncDirs != nil {
			cfg.IncDirs = overrides.IncDirs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads a TOML configuration file into cfg. If the file
// doesn't exist, this is not an error (we use defaults).
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// Validate checks that every enum field holds a recognized value.
func (c *Config) Validate() error {
	if !c.Grouping.IsValid() {
		return fmt.Errorf("invalid grouping: %q (must be 'by_direction' or 'alphabetical')", c.Grouping)
	}
	if !c.Strictness.IsValid() {
		return fmt.Errorf("invalid strictness: %q (must be 'lenient' or 'strict')", c.Strictness)
	}
	if c.Indent == "" {
		return fmt.Errorf("indent must not be empty")
	}
	return nil
}

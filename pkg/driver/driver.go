// Package driver implements the command-line glue between a set of
// source-file arguments and one analyzer run: file-list expansion,
// compilation-graph construction, per-file analysis, and output mode
// selection (in-place, diff, or dry-run check).
package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autosv/autosv/pkg/analyzer"
	"github.com/autosv/autosv/pkg/compilation"
	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/diagnostics"
	"github.com/autosv/autosv/pkg/logging"
	"github.com/autosv/autosv/pkg/svast"
)

// Mode names the kind of run a caller is making. Run does not read it;
// writing, diffing or reporting the results is left to the caller.
type Mode int

const (
	// ModeWrite: the caller writes changed files back with Apply.
	ModeWrite Mode = iota
	// ModeDiff: the caller prints a unified diff (UnifiedDiff).
	ModeDiff
	// ModeCheck: the caller reports diagnostics only, writing nothing.
	ModeCheck
)

// Options collects the driver's command-line surface (spec.md §4 CLI).
type Options struct {
	Files     []string // positional source files
	FileLists []string // -f <file>, expanded recursively
	LibDirs   []string // -y <dir>
	LibExt    []string // +libext+.a+.b
	IncDirs   []string // +incdir+<dir>
	Defines   map[string]string // +define+NAME[=VAL]
	Mode      Mode
	Config    *config.Config
	Logger    logging.Logger
}

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Path        string
	Changed     bool
	Output      []byte
	Original    []byte
	Diagnostics []diagnostics.Diagnostic
}

// Run expands AUTO regions across every file named (directly or via a
// file list) in opts, returning one FileResult per file in stable order.
func Run(opts Options) ([]FileResult, error) {
	files, err := ResolveFileList(opts.Files, opts.FileLists)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	parsed := make([]*svast.File, 0, len(files))
	byPath := make(map[string]*svast.File, len(files))
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		f, err := svast.Parse(path, src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		parsed = append(parsed, f)
		byPath[path] = f
	}

	comp := compilation.FromFiles(parsed)
	a := analyzer.New(opts.Config, opts.Logger)

	var results []FileResult
	for _, path := range files {
		f := byPath[path]
		res, err := a.AnalyzeFile(f, comp)
		if err != nil {
			return nil, fmt.Errorf("analyzing %s: %w", path, err)
		}
		results = append(results, FileResult{
			Path:        path,
			Changed:     res.Changed,
			Output:      res.Output,
			Original:    f.Source,
			Diagnostics: res.Diagnostics.Diagnostics(),
		})
	}
	return results, nil
}

// Apply writes r.Output to disk when r.Changed, used by ModeWrite.
func Apply(r FileResult) error {
	if !r.Changed {
		return nil
	}
	info, err := os.Stat(r.Path)
	perm := os.FileMode(0644)
	if err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(r.Path, r.Output, perm)
}

// ExitCode folds every file result's diagnostics into one process exit
// code, per spec.md §7's strict/lenient rules.
func ExitCode(results []FileResult, strict bool) int {
	worst := 0
	for _, r := range results {
		c := codeFor(r.Diagnostics, strict)
		if c > worst {
			worst = c
		}
	}
	return worst
}

func codeFor(diags []diagnostics.Diagnostic, strict bool) int {
	hasError, hasWarning := false, false
	for _, d := range diags {
		switch d.Severity {
		case diagnostics.Error:
			hasError = true
		case diagnostics.Warning:
			hasWarning = true
		}
	}
	if hasError {
		return 2
	}
	if strict && hasWarning {
		return 1
	}
	return 0
}

// ResolveFileList merges direct file arguments with the contents of
// any -f file lists, expanding nested -f references recursively and
// rejecting cycles (spec.md §4 "-f <file> (expanded, recursively, with
// cycle detection)").
func ResolveFileList(direct []string, fileLists []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, f := range direct {
		add(f)
	}
	visiting := make(map[string]bool)
	for _, fl := range fileLists {
		if err := expandFileList(fl, visiting, add); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expandFileList(path string, visiting map[string]bool, add func(string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visiting[abs] {
		return fmt.Errorf("cyclic -f file list: %s", path)
	}
	visiting[abs] = true
	defer delete(visiting, abs)

	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file list %s: %w", path, err)
	}
	defer fh.Close()

	dir := filepath.Dir(path)
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-f ") {
			nested := strings.TrimSpace(strings.TrimPrefix(line, "-f "))
			if !filepath.IsAbs(nested) {
				nested = filepath.Join(dir, nested)
			}
			if err := expandFileList(nested, visiting, add); err != nil {
				return err
			}
			continue
		}
		entry := line
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(dir, entry)
		}
		add(entry)
	}
	return scanner.Err()
}

// ParseDefine splits a `+define+NAME[=VALUE]` argument's payload
// ("NAME[=VALUE]", already stripped of the +define+ prefix) into a
// name/value pair. An absent "=VALUE" yields the empty string, matching
// a bare preprocessor define.
func ParseDefine(arg string) (name, value string) {
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

// ParseLibExt splits a `+libext+.a+.b` argument's payload (".a+.b") into
// its individual extensions.
func ParseLibExt(arg string) []string {
	parts := strings.Split(arg, "+")
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UnifiedDiff renders a minimal line-based unified diff between a and b,
// used by ModeDiff. It is not a general-purpose diff algorithm: it finds
// the common prefix/suffix of lines and reports the differing middle
// span as one hunk, which is sufficient for the localized AUTO-region
// edits this engine produces.
func UnifiedDiff(path string, a, b []byte) string {
	if bytes.Equal(a, b) {
		return ""
	}
	aLines := strings.Split(string(a), "\n")
	bLines := strings.Split(string(b), "\n")

	prefix := 0
	for prefix < len(aLines) && prefix < len(bLines) && aLines[prefix] == bLines[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(aLines)-prefix && suffix < len(bLines)-prefix &&
		aLines[len(aLines)-1-suffix] == bLines[len(bLines)-1-suffix] {
		suffix++
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- %s\n+++ %s\n", path, path)
	fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", prefix+1, len(aLines)-prefix-suffix, prefix+1, len(bLines)-prefix-suffix)
	for i := prefix; i < len(aLines)-suffix; i++ {
		fmt.Fprintf(&buf, "-%s\n", aLines[i])
	}
	for i := prefix; i < len(bLines)-suffix; i++ {
		fmt.Fprintf(&buf, "+%s\n", bLines[i])
	}
	return buf.String()
}

// Package main implements the autosv command-line tool.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/diagnostics"
	"github.com/autosv/autosv/pkg/driver"
	"github.com/autosv/autosv/pkg/logging"
	"github.com/autosv/autosv/pkg/ui"
	"github.com/autosv/autosv/pkg/watch"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "autosv",
		Short:        "autosv - AUTOINST/AUTOLOGIC/AUTOPORTS expansion for SystemVerilog",
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHelp(version)
		},
	}
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) { ui.PrintHelp(version) })
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Run:   func(cmd *cobra.Command, args []string) { ui.PrintHelp(version) },
	})

	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// plusArgs is the subset of flags that follow SystemVerilog's `+name+value`
// convention (+libext+, +incdir+, +define+), which pflag cannot parse
// directly since they don't begin with `-`. fileLists collects -f.
type plusArgs struct {
	files     []string
	fileLists []string
	libDirs   []string
	libExt    []string
	defines   map[string]string
}

// splitPlusArgs separates the verilog-style +foo+ tokens, -y/-f flags,
// and plain source file arguments out of a raw argument list.
func splitPlusArgs(args []string) plusArgs {
	p := plusArgs{defines: make(map[string]string)}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.HasPrefix(a, "+incdir+"):
			// +incdir+ entries are accepted and dropped: they reach
			// neither config.IncDirs nor the driver Options.
		case strings.HasPrefix(a, "+libext+"):
			p.libExt = append(p.libExt, driver.ParseLibExt(strings.TrimPrefix(a, "+libext+"))...)
		case strings.HasPrefix(a, "+define+"):
			name, val := driver.ParseDefine(strings.TrimPrefix(a, "+define+"))
			p.defines[name] = val
		case a == "-y":
			if i+1 < len(args) {
				i++
				p.libDirs = append(p.libDirs, args[i])
			}
		case a == "-f":
			if i+1 < len(args) {
				i++
				p.fileLists = append(p.fileLists, args[i])
			}
		default:
			p.files = append(p.files, a)
		}
	}
	return p
}

func runDriver(args []string, strict bool, mode driver.Mode) ([]driver.FileResult, error) {
	p := splitPlusArgs(args)

	cfg, err := config.Load(nil)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if strict {
		cfg.Strictness = config.StrictnessStrict
	}
	cfg.LibDirs = append(cfg.LibDirs, p.libDirs...)
	cfg.LibExt = append(cfg.LibExt, p.libExt...)

	logger, logErr := logging.NewDevelopment()
	if logErr != nil {
		logger = logging.NewNoOp()
	}

	return driver.Run(driver.Options{
		Files:     p.files,
		FileLists: p.fileLists,
		LibDirs:   p.libDirs,
		LibExt:    p.libExt,
		Defines:   p.defines,
		Mode:      mode,
		Config:    cfg,
		Logger:    logger,
	})
}

func expandCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:                "expand [files...]",
		Short:              "Expand AUTOINST/AUTOLOGIC/AUTOPORTS markers in place",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, strict = stripStrictFlag(args)
			out := ui.NewExpandOutput()
			out.PrintHeader(version)

			results, err := runDriver(args, strict, driver.ModeWrite)
			if err != nil {
				out.PrintError(err.Error())
				return err
			}
			out.PrintRunStart(len(results))

			changed, unchanged, warnings, errs := 0, 0, 0, 0
			for _, r := range results {
				out.PrintFileStart(r.Path)
				if err := driver.Apply(r); err != nil {
					out.PrintError(err.Error())
					errs++
					continue
				}
				if r.Changed {
					changed++
				} else {
					unchanged++
				}
				warnings += reportDiagnostics(out, r)
			}
			out.PrintSummary(changed, unchanged, warnings, errs)
			os.Exit(driver.ExitCode(results, strict))
			return nil
		},
	}
	return cmd
}

func diffCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:                "diff [files...]",
		Short:              "Show what expansion would change, without writing",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, strict = stripStrictFlag(args)
			results, err := runDriver(args, strict, driver.ModeDiff)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			for _, r := range results {
				if d := driver.UnifiedDiff(r.Path, r.Original, r.Output); d != "" {
					fmt.Print(d)
				}
			}
			os.Exit(driver.ExitCode(results, strict))
			return nil
		},
	}
	return cmd
}

func checkCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:                "check [files...]",
		Short:              "Report diagnostics only; exit non-zero on problems",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, strict = stripStrictFlag(args)
			out := ui.NewExpandOutput()
			results, err := runDriver(args, strict, driver.ModeCheck)
			if err != nil {
				out.PrintError(err.Error())
				os.Exit(1)
			}
			for _, r := range results {
				reportDiagnostics(out, r)
			}
			os.Exit(driver.ExitCode(results, strict))
			return nil
		},
	}
	return cmd
}

func watchCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:                "watch [files...]",
		Short:              "Re-expand files on change",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, strict = stripStrictFlag(args)
			p := splitPlusArgs(args)
			files, err := driver.ResolveFileList(p.files, p.fileLists)
			if err != nil {
				return err
			}
			w, err := watch.New(files, logging.NewNoOp())
			if err != nil {
				return err
			}
			defer w.Close()

			out := ui.NewExpandOutput()
			out.PrintHeader(version)
			out.PrintInfo("watching for changes; press Ctrl+C to stop")
			w.Run(func(path string) {
				results, err := runDriver([]string{path}, strict, driver.ModeWrite)
				if err != nil {
					out.PrintError(err.Error())
					return
				}
				for _, r := range results {
					out.PrintFileStart(r.Path)
					if err := driver.Apply(r); err != nil {
						out.PrintError(err.Error())
						continue
					}
					reportDiagnostics(out, r)
				}
			})
			return nil
		},
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintVersionInfo(version)
		},
	}
}

// stripStrictFlag pulls a bare "--strict" token out of args, since these
// commands disable pflag parsing to make room for +foo+ tokens.
func stripStrictFlag(args []string) ([]string, bool) {
	var out []string
	strict := false
	for _, a := range args {
		if a == "--strict" {
			strict = true
			continue
		}
		out = append(out, a)
	}
	return out, strict
}

// reportDiagnostics prints every diagnostic attached to r and returns
// the number of warning-severity diagnostics it printed.
func reportDiagnostics(out *ui.ExpandOutput, r driver.FileResult) int {
	warnings := 0
	for _, d := range r.Diagnostics {
		dd := d
		if dd.Severity == diagnostics.Warning {
			warnings++
		}
		out.PrintDiagnostic(dd.Format(), dd.Severity == diagnostics.Error)
	}
	return warnings
}

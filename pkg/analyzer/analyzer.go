// Package analyzer ties the collect/resolve/generate/apply passes
// together into one per-file Analyzer, per spec.md §5: single-threaded,
// synchronous, deterministic given the same input buffer, syntax tree,
// and template set.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/autosv/autosv/pkg/aggregator"
	"github.com/autosv/autosv/pkg/apply"
	"github.com/autosv/autosv/pkg/compilation"
	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/connection"
	"github.com/autosv/autosv/pkg/diagnostics"
	"github.com/autosv/autosv/pkg/directive"
	"github.com/autosv/autosv/pkg/logging"
	"github.com/autosv/autosv/pkg/model"
	"github.com/autosv/autosv/pkg/region"
	"github.com/autosv/autosv/pkg/svast"
	"github.com/autosv/autosv/pkg/template"
)

// Analyzer expands every AUTO region of one parsed file against one
// compilation graph.
type Analyzer struct {
	cfg    *config.Config
	logger logging.Logger
}

// New creates an Analyzer bound to cfg. A nil logger is replaced with a
// no-op logger.
func New(cfg *config.Config, logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Result is the outcome of analyzing one file.
type Result struct {
	Output     []byte
	Changed    bool
	Diagnostics *diagnostics.Collector
}

// AnalyzeFile runs collect → resolve → generate → apply over every
// module in f, against comp and every AUTO_TEMPLATE found anywhere in
// the file.
func (a *Analyzer) AnalyzeFile(f *svast.File, comp compilation.Compilation) (Result, error) {
	collector := diagnostics.NewCollector()

	templates, warnings := directive.CollectTemplates(f)
	for _, w := range warnings {
		collector.Add(diagnostics.Warning, diagnostics.CategoryTemplateSyntax, f.Path, w.Line, 1, w.Message)
	}

	queue := apply.NewQueue(len(f.Source))
	strict := a.cfg.Strictness == config.StrictnessStrict

	for _, mod := range f.Modules {
		skip := a.analyzeModule(f, mod, comp, templates, queue, collector, strict)
		if skip && strict {
			// Unresolved module in strict mode: abort expansion of this
			// file entirely and preserve it unchanged (spec.md §7 rule 2).
			return Result{Output: f.Source, Changed: false, Diagnostics: collector}, nil
		}
	}

	out, err := apply.Apply(f.Source, queue)
	if err != nil {
		return Result{}, err
	}
	changed := queue.Len() > 0
	return Result{Output: out, Changed: changed, Diagnostics: collector}, nil
}

// analyzeModule processes one module and returns true if it encountered
// an unresolved module reference (so the caller can apply strict-mode
// abort semantics).
func (a *Analyzer) analyzeModule(f *svast.File, mod *svast.ModuleDeclaration, comp compilation.Compilation, templates []*model.AutoTemplate, queue *apply.Queue, collector *diagnostics.Collector, strict bool) bool {
	agg := aggregator.New()

	type job struct {
		instanceName string
		def          *model.ModuleDef
		info         model.AutoInstInfo
		openParen    int
		closeParen   int
		hasMarker    bool
	}
	var jobs []job
	hadUnresolved := false

	for _, hi := range mod.Instantiations {
		def, ok := comp.LookupModule(hi.ModuleType)
		if !ok {
			hadUnresolved = true
			sev := diagnostics.Warning
			if strict {
				sev = diagnostics.Error
			}
			collector.AddAtOffset(sev, diagnostics.CategoryUnresolvedModule, f.Path, f.Source, hi.Start, fmt.Sprintf("unresolved module %q", hi.ModuleType))
			continue
		}

		for _, inst := range hi.Instances {
			markerStart, markerEnd, filterRegex, manual, hasMarker := directive.FindAutoInst(inst)
			instLine := directive.LineOf(f.Source, inst.Start)
			tmpl := directive.SelectTemplate(templates, hi.ModuleType, instLine)

			for _, c := range inst.Connections {
				if !manual[c.PortName] {
					continue
				}
				port, found := def.PortByName(c.PortName)
				if !found {
					continue
				}
				pc := model.PortConnection{
					PortName:      c.PortName,
					Direction:     port.Direction,
					SignalExpr:    c.Expr,
					IsUnconnected: template.IsUnconnected(c.Expr),
					IsConstant:    template.IsConstant(c.Expr),
				}
				agg.Observe(inst.InstanceName, pc, port)
			}

			if hasMarker {
				for _, port := range def.Ports {
					if manual[port.Name] {
						continue
					}
					if filterRegex != "" && !filterMatches(filterRegex, port.Name) {
						continue
					}
					res, d := template.Match(tmpl, inst.InstanceName, port)
					for _, dd := range d {
						collector.AddAtOffset(diagnostics.Warning, templateDiagCategory(dd.Message), f.Path, f.Source, inst.Start, dd.Message)
					}
					pc := model.PortConnection{
						PortName:      port.Name,
						Direction:     port.Direction,
						SignalExpr:    res.SignalName,
						IsUnconnected: template.IsUnconnected(res.SignalName),
						IsConstant:    template.IsConstant(res.SignalName),
						MatchedRule:   res.MatchedRule,
					}
					agg.Observe(inst.InstanceName, pc, port)
				}
			}

			jobs = append(jobs, job{
				instanceName: inst.InstanceName,
				def:          def,
				info: model.AutoInstInfo{
					ModuleType:    hi.ModuleType,
					InstanceName:  inst.InstanceName,
					ManualPorts:   manual,
					MarkerEnd:     markerEnd,
					CloseParenPos: inst.CloseParen,
					FilterRegex:   filterRegex,
					Template:      tmpl,
					LineNumber:    instLine,
					Indent:        directive.DetectIndent(f.Source, hi.Start),
				},
				openParen:  markerStart,
				closeParen: inst.CloseParen,
				hasMarker:  hasMarker,
			})
		}
	}

	// Generate phase: AUTOINST connections first (may register unused
	// helper signals consumed by the AUTOLOGIC region below).
	for _, j := range jobs {
		if !j.hasMarker {
			continue
		}
		sourceBeforeMarker := string(f.Source[:j.openParen])
		res, diags := connection.Generate(a.cfg, agg, j.def, j.info, j.instanceName, sourceBeforeMarker)
		for _, d := range diags {
			collector.AddAtOffset(diagnostics.Warning, diagnostics.CategoryWidthConflict, f.Path, f.Source, j.info.MarkerEnd, d.Message)
		}
		original := string(f.Source[j.info.MarkerEnd:j.closeParen])
		if connection.IdempotentReplacement(original, res.Text) {
			continue
		}
		queue.Add(model.Replacement{Start: j.info.MarkerEnd, End: j.closeParen, NewText: res.Text, Label: "autoinst:" + j.instanceName})
	}

	// AUTOLOGIC / AUTOREG / AUTOWIRE region.
	if logicInfo, ok := directive.FindAutoLogic(f.Source, mod.HeaderEnd, mod.BodyEnd); ok {
		declared := declaredNetNames(f, mod, logicInfo)
		text := region.GenerateLogic(a.cfg, agg, logicInfo.Kind, logicInfo.Indent, declared)
		if logicInfo.FenceStart >= 0 {
			if text == "" {
				queue.Add(model.Replacement{Start: logicInfo.FenceStart, End: logicInfo.FenceEnd, NewText: "", Label: "autologic"})
			} else if strings.TrimSpace(string(f.Source[logicInfo.FenceStart:logicInfo.FenceEnd])) != strings.TrimSpace(strings.TrimPrefix(text, "\n")) {
				queue.Add(model.Replacement{Start: logicInfo.FenceStart, End: logicInfo.FenceEnd, NewText: strings.TrimPrefix(text, "\n"), Label: "autologic"})
			}
		} else if text != "" {
			queue.Add(model.Replacement{Start: logicInfo.MarkerEnd, End: logicInfo.MarkerEnd, NewText: text, Label: "autologic"})
		}
	}

	// AUTOPORTS region.
	if mod.Ports != nil {
		if mod.Ports.NonANSI {
			if strings.Contains(string(f.Source[mod.Ports.Start:mod.Ports.EndPos]), "/*AUTOPORTS*/") {
				collector.AddAtOffset(diagnostics.Warning, diagnostics.CategoryTemplateSyntax, f.Path, f.Source, mod.Ports.Start, "AUTOPORTS is not supported on a non-ANSI port list; skipped")
			}
		} else if info, ok := directive.FindAutoPorts(f.Source, mod.Ports.Start, mod.Ports.EndPos); ok {
			var existing []string
			for _, p := range mod.Ports.Ports {
				if p.Start < info.MarkerEnd {
					existing = append(existing, p.Name)
				}
			}
			text := region.GeneratePorts(a.cfg, agg, existing)
			original := string(f.Source[info.MarkerEnd:info.HeaderCloseParen])
			if strings.TrimSpace(original) != strings.TrimSpace(text) {
				queue.Add(model.Replacement{Start: info.MarkerEnd, End: info.HeaderCloseParen, NewText: text, Label: "autoports"})
			}
		}
	}

	return hadUnresolved
}

// declaredNetNames returns every user-declared net name outside an
// existing AUTOLOGIC fence (spec.md §4.6's declared-set exclusion), plus
// every port already declared in the module's ANSI header: a port name
// manually declared before `/*AUTOPORTS*/` (or with no AUTOPORTS marker
// at all) is already a declaration and must never be redeclared as a net
// by AUTOLOGIC (spec.md §4.6 scenario 4).
func declaredNetNames(f *svast.File, mod *svast.ModuleDeclaration, logicInfo *model.AutoLogicInfo) map[string]bool {
	declared := make(map[string]bool)
	for _, nd := range mod.NetDecls {
		inFence := logicInfo.FenceStart >= 0 && nd.Start >= logicInfo.FenceStart && nd.EndPos <= logicInfo.FenceEnd
		if inFence {
			continue
		}
		for _, name := range nd.Names {
			declared[name] = true
		}
	}

	if mod.Ports != nil && !mod.Ports.NonANSI {
		portsMarkerEnd := mod.Ports.EndPos
		if info, ok := directive.FindAutoPorts(f.Source, mod.Ports.Start, mod.Ports.EndPos); ok {
			portsMarkerEnd = info.MarkerEnd
		}
		for _, p := range mod.Ports.Ports {
			if p.Start < portsMarkerEnd {
				declared[p.Name] = true
			}
		}
	}

	return declared
}

func filterMatches(pattern, name string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return true
	}
	return re.MatchString(name)
}

// templateDiagCategory classifies a template-matcher diagnostic message
// into one of spec.md §7's named categories by content, since
// pkg/template reports plain strings rather than typed categories.
func templateDiagCategory(msg string) diagnostics.Category {
	if strings.Contains(msg, "constant") && strings.Contains(msg, "output") {
		return diagnostics.CategoryConstantOnOutput
	}
	return diagnostics.CategoryTemplateSyntax
}

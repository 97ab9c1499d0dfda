// Package ui provides beautiful, styled CLI output using lipgloss, for
// reporting AUTO region expansion progress and results.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - carefully chosen for readability and aesthetics
var (
	// Primary colors
	colorPrimary   = lipgloss.Color("#7D56F4") // Purple (brand)
	colorSecondary = lipgloss.Color("#56C3F4") // Cyan
	colorSuccess   = lipgloss.Color("#5AF78E") // Green
	colorWarning   = lipgloss.Color("#F7DC6F") // Yellow
	colorError     = lipgloss.Color("#FF6B9D") // Pink/Red
	colorMuted     = lipgloss.Color("#6C7086") // Gray

	// Semantic colors
	colorText      = lipgloss.Color("#CDD6F4") // Light text
	colorSubtle    = lipgloss.Color("#7F849C") // Subtle text
	colorBorder    = lipgloss.Color("#45475A") // Border
	colorHighlight = lipgloss.Color("#F5E0DC") // Highlight
	colorNormal    = lipgloss.Color("#FFFFFF") // Normal white text
)

// Styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary).
			MarginTop(1)

	styleFilePath = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleFileInput = lipgloss.NewStyle().
			Foreground(colorText)

	styleFileOutput = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleStepLabel = lipgloss.NewStyle().
			Foreground(colorText).
			Width(12).
			Align(lipgloss.Left)

	styleStepStatus = lipgloss.NewStyle().
			Bold(true)

	styleStepTime = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorBorder).
			MarginTop(1).
			PaddingTop(1)

	styleIndent = lipgloss.NewStyle().
			PaddingLeft(2)

	styleNormalText = lipgloss.NewStyle().
			Foreground(colorNormal)
)

// ExpandOutput manages one run's expansion output display: one header,
// then one file section per analyzed file, then a summary.
type ExpandOutput struct {
	startTime time.Time
	fileCount int
}

// NewExpandOutput creates a new output manager.
func NewExpandOutput() *ExpandOutput {
	return &ExpandOutput{startTime: time.Now()}
}

// PrintHeader prints the tool's banner.
func (o *ExpandOutput) PrintHeader(version string) {
	header := styleHeader.Render("⚡ autosv")
	versionBadge := styleVersion.Render("v" + version)
	fmt.Println(header + " " + versionBadge)
}

// PrintRunStart announces how many files will be processed.
func (o *ExpandOutput) PrintRunStart(fileCount int) {
	o.fileCount = fileCount

	var msg string
	if fileCount == 1 {
		msg = "🔍 Expanding 1 file"
	} else {
		msg = fmt.Sprintf("🔍 Expanding %d files", fileCount)
	}

	fmt.Println(styleSection.Render(msg))
	fmt.Println()
}

// PrintFileStart announces the file currently being analyzed.
func (o *ExpandOutput) PrintFileStart(path string) {
	fmt.Printf("  %s\n", styleFileInput.Render(path))
}

// Step represents one pass of the collect/resolve/generate/apply
// pipeline applied to a single file.
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// StepStatus represents the outcome of one pipeline pass.
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepWarning
	StepError
)

// PrintStep prints one pipeline step with its status.
func (o *ExpandOutput) PrintStep(step Step) {
	var icon, status, statusStyle string

	switch step.Status {
	case StepSuccess:
		icon = "✓"
		status = "Done"
		statusStyle = styleSuccess.Render(status)
	case StepSkipped:
		icon = "○"
		status = "Skipped"
		statusStyle = styleMuted.Render(status)
	case StepWarning:
		icon = "⚠"
		status = "Warning"
		statusStyle = styleWarning.Render(status)
	case StepError:
		icon = "✗"
		status = "Failed"
		statusStyle = styleError.Render(status)
	}

	label := styleStepLabel.Render(step.Name)
	line := fmt.Sprintf("  %s %s", icon, label)
	line += styleStepStatus.Render(statusStyle)

	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(step.Duration)+")")
	}

	fmt.Println(line)

	if step.Message != "" {
		fmt.Println(styleMuted.Render("    " + step.Message))
	}
}

// PrintSummary prints the final run summary across all files.
func (o *ExpandOutput) PrintSummary(changed, unchanged, warnings, errs int) {
	elapsed := time.Since(o.startTime)
	fmt.Println()

	var summaryLine string
	if errs > 0 {
		summaryLine = fmt.Sprintf("💥 %s  %d changed, %d unchanged, %d warning(s), %d error(s)",
			styleError.Render("Expansion failed"), changed, unchanged, warnings, errs)
	} else if warnings > 0 {
		summaryLine = fmt.Sprintf("⚠ %s  %d changed, %d unchanged, %d warning(s) in %s",
			styleWarning.Render("Expansion complete"), changed, unchanged, warnings, styleStepTime.Render(formatDuration(elapsed)))
	} else {
		summaryLine = fmt.Sprintf("✨ %s  %d changed, %d unchanged in %s",
			styleSuccess.Render("Expansion complete"), changed, unchanged, styleStepTime.Render(formatDuration(elapsed)))
	}

	fmt.Println(styleSummary.Render(summaryLine))
}

// PrintError prints an error message.
func (o *ExpandOutput) PrintError(msg string) {
	fmt.Println(styleIndent.Render(styleError.Render("✗ Error: ") + msg))
}

// PrintWarning prints a warning message.
func (o *ExpandOutput) PrintWarning(msg string) {
	fmt.Println(styleIndent.Render(styleWarning.Render("⚠ Warning: ") + msg))
}

// PrintInfo prints an informational message.
func (o *ExpandOutput) PrintInfo(msg string) {
	fmt.Println(styleIndent.Render(styleMuted.Render("ℹ " + msg)))
}

// PrintDiagnostic prints one rendered diagnostic, indented to match the
// surrounding step output.
func (o *ExpandOutput) PrintDiagnostic(formatted string, isError bool) {
	style := styleWarning
	if isError {
		style = styleError
	}
	for _, line := range strings.Split(strings.TrimRight(formatted, "\n"), "\n") {
		fmt.Println(styleIndent.Render(style.Render(line)))
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// PrintVersionInfo prints version information.
func PrintVersionInfo(version string) {
	fmt.Println(styleHeader.Render("⚡ autosv"))
	fmt.Println()
	fmt.Printf("  %s %s\n", styleMuted.Render("Version:"), styleSuccess.Render(version))
	fmt.Printf("  %s %s\n", styleMuted.Render("Purpose:"), styleNormalText.Render("AUTOINST/AUTOLOGIC/AUTOPORTS expansion"))
	fmt.Println()
}

// Divider creates a horizontal divider.
func Divider() string {
	return styleMuted.Render(strings.Repeat("─", 60))
}

// PrintHelp prints colorful top-level help output.
func PrintHelp(version string) {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	desc := lipgloss.NewStyle().Foreground(colorText)
	section := lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
	command := lipgloss.NewStyle().Foreground(colorSuccess)
	flag := lipgloss.NewStyle().Foreground(colorHighlight)

	fmt.Println()
	fmt.Println(header.Render("⚡ autosv") + " " + muted.Render("- AUTOINST/AUTOLOGIC/AUTOPORTS expansion for SystemVerilog"))
	fmt.Println(muted.Render("  v" + version))
	fmt.Println()

	fmt.Println(desc.Render("Fills /*AUTOINST*/, /*AUTOLOGIC*/, and /*AUTOPORTS*/ markers in"))
	fmt.Println(desc.Render("elaborated SystemVerilog source from resolved module port lists."))
	fmt.Println()

	fmt.Println(section.Render("Usage:"))
	fmt.Println("  autosv [command] [flags] [files...]")
	fmt.Println()

	fmt.Println(section.Render("Available Commands:"))
	commands := []struct{ name, desc string }{
		{"expand", "Expand AUTO markers in place"},
		{"diff", "Show what expansion would change, without writing"},
		{"check", "Report diagnostics only; exit non-zero on problems"},
		{"watch", "Re-expand files on change"},
		{"version", "Print the version number"},
		{"help", "Help about any command"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", command.Render(fmt.Sprintf("%-12s", cmd.name)), cmd.desc)
	}
	fmt.Println()

	fmt.Println(section.Render("Flags:"))
	fmt.Printf("  %s      help for autosv\n", flag.Render("-h, --help"))
	fmt.Printf("  %s   version for autosv\n", flag.Render("-v, --version"))
	fmt.Println()

	fmt.Println(muted.Render("Use \"autosv [command] --help\" for more information about a command."))
	fmt.Println()
}

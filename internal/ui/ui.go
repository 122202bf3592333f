// Package ui provides terminal user interface components
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

var (
	// Colors
	Green   = color.New(color.FgGreen).SprintFunc()
	Yellow  = color.New(color.FgYellow).SprintFunc()
	Red     = color.New(color.FgRed).SprintFunc()
	Cyan    = color.New(color.FgCyan).SprintFunc()
	Magenta = color.New(color.FgMagenta).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()

	// Styled
	Success = color.New(color.FgGreen, color.Bold).SprintFunc()
	Warning = color.New(color.FgYellow, color.Bold).SprintFunc()
	Error   = color.New(color.FgRed, color.Bold).SprintFunc()
	Info    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

var (
	answerPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)

	codePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("5")).
			Padding(0, 1)

	contextPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("3")).
			Padding(0, 1)

	panelTitle = lipgloss.NewStyle().Bold(true)
)

// SetColorEnabled toggles all color output at once.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
	if !enabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// PrintAnswer displays a direct answer in a bordered panel
func PrintAnswer(answer string) {
	fmt.Println()
	body := panelTitle.Render("💬 Answer") + "\n\n" + answer
	fmt.Println(answerPanel.Render(body))
}

// PrintGeneratedCode displays generated code before execution
func PrintGeneratedCode(language, source string) {
	fmt.Println()
	title := fmt.Sprintf("✨ Generated %s", language)
	body := panelTitle.Render(title) + "\n\n" + strings.TrimRight(source, "\n")
	fmt.Println(codePanel.Render(body))
}

// PrintExplanation displays the model's explanation alongside code
func PrintExplanation(explanation string) {
	if explanation == "" {
		return
	}
	fmt.Println()
	fmt.Printf("📋 %s\n", Bold("Explanation:"))
	for _, line := range strings.Split(explanation, "\n") {
		fmt.Printf("   %s\n", line)
	}
}

// PrintContextRequest displays the model's request for more context
func PrintContextRequest(prompt string) {
	fmt.Println()
	body := panelTitle.Render("❓ More context needed") + "\n\n" + prompt
	fmt.Println(contextPanel.Render(body))
	fmt.Print("\n  Your answer: ")
}

// PrintToolCall announces a tool invocation
func PrintToolCall(name string, args map[string]any) {
	fmt.Println()
	fmt.Printf("🔧 %s %s\n", Bold("Calling tool:"), Cyan(name))
	for key, value := range args {
		fmt.Printf("   %s: %v\n", Dim(key), value)
	}
}

// PrintToolResult displays what a tool returned
func PrintToolResult(name, result string) {
	fmt.Println()
	fmt.Printf("🔧 %s %s\n", Bold("Tool result:"), Cyan(name))
	for _, line := range strings.Split(strings.TrimRight(result, "\n"), "\n") {
		fmt.Printf("   %s\n", line)
	}
}

// PrintRiskLevel displays the risk level with appropriate styling
func PrintRiskLevel(level types.RiskLevel, reasons []string) {
	if level == types.RiskSafe {
		return
	}
	fmt.Println()

	var icon string
	var colorFn func(a ...interface{}) string
	switch level {
	case types.RiskCaution:
		icon = "🟡"
		colorFn = Yellow
	case types.RiskDangerous:
		icon = "🟠"
		colorFn = func(a ...interface{}) string {
			return color.New(color.FgHiRed).Sprint(a...)
		}
	case types.RiskCritical:
		icon = "🔴"
		colorFn = Red
	}

	fmt.Printf("%s %s: %s\n", icon, Bold("Risk Level"), colorFn(level.String()))
	for _, reason := range reasons {
		fmt.Printf("   • %s\n", reason)
	}
}

// PrintExecutionResult displays the result of running generated code
func PrintExecutionResult(result *types.ExecutionResult) {
	fmt.Println()

	if result.Stdout != "" {
		fmt.Print(result.Stdout)
		if !strings.HasSuffix(result.Stdout, "\n") {
			fmt.Println()
		}
	}
	if result.Stderr != "" {
		fmt.Println(Yellow(strings.TrimRight(result.Stderr, "\n")))
	}

	fmt.Println()
	seconds := result.WallTime.Seconds()
	switch {
	case result.TimedOut:
		fmt.Printf("%s Execution timed out after %.0fs\n", Error("✗"), seconds)
	case result.ExitCode == 0:
		fmt.Printf("%s Completed successfully (%.2fs)\n", Success("✓"), seconds)
	default:
		fmt.Printf("%s Exited with code %d (%.2fs)\n", Error("✗"), result.ExitCode, seconds)
	}
}

// PrintSuccess displays a success message
func PrintSuccess(message string) {
	fmt.Printf("\n%s %s\n", Success("✓"), message)
}

// PrintError displays an error message
func PrintError(message string) {
	fmt.Printf("\n%s %s\n", Error("✗"), message)
}

// PrintWarning displays a warning message
func PrintWarning(message string) {
	fmt.Printf("\n%s %s\n", Warning("⚠"), message)
}

// PrintInfo displays an info message
func PrintInfo(message string) {
	fmt.Printf("\n%s %s\n", Info("ℹ"), message)
}

// PrintHeader displays the interactive mode header
func PrintHeader(provider, model string) {
	fmt.Println()
	fmt.Println(Magenta("  ✦ smart-cli - interactive mode"))
	fmt.Printf("  %s\n", Dim(fmt.Sprintf("provider: %s  model: %s", provider, model)))
	fmt.Println(Dim("  Type your query, or exit/quit/q to leave"))
	fmt.Println()
}

// Spinner represents a loading spinner
type Spinner struct {
	frames  []string
	current int
	message string
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
	}
}

// Frame returns the next spinner frame
func (s *Spinner) Frame() string {
	frame := s.frames[s.current]
	s.current = (s.current + 1) % len(s.frames)
	return fmt.Sprintf("\r%s %s", Cyan(frame), s.message)
}

// Clear erases the spinner line
func (s *Spinner) Clear() {
	fmt.Print("\r" + strings.Repeat(" ", len(s.message)+2) + "\r")
}

// Truncate shortens a string for single-line display
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

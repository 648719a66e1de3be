package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette (ANSI 256).
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// Styles shared by the command output, the run table and the inspector.
var (
	// StyleTitle heads the inspector view.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	// StyleHighlight marks the selected piece and suggested commands.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning renders piece warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleKey  = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleOK   = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail = lipgloss.NewStyle().Foreground(colorRed)
	styleNote = lipgloss.NewStyle().Foreground(colorGray)
	styleSpin = lipgloss.NewStyle().Foreground(colorTeal)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// printSuccess reports a finished command, e.g. "✓ Generated 16 pieces".
func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleFail.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning reports a per-piece warning such as a failed offset.
func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleNote.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// keyValue formats one aligned "key value" line; printRun shares it.
func keyValue(key, value string) string {
	return styleKey.Render(key) + " " + StyleValue.Render(value)
}

func printKeyValue(key, value string) {
	fmt.Println(keyValue(key, value))
}

// printStats summarises a generated or rendered puzzle on one line:
//
//	16 pieces · 24 edges · 1 warnings · cached
func printStats(pieces, edges, warnings int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d pieces", pieces)),
		StyleDim.Render(fmt.Sprintf("%d edges", edges)),
	}
	if warnings > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d warnings", warnings)))
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleNote.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up, e.g. "Reproduce: add --seed 42".
func printNextStep(description, hint string) {
	fmt.Println(StyleDim.Render(description+":") + " " + StyleHighlight.Render(hint))
}

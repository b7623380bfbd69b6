package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// uiOut receives user-facing status lines. Logs go to stderr.
var uiOut io.Writer = os.Stdout

// =============================================================================
// Styles
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleTitle renders section headings such as the inspect header.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleHighlight renders ids and names inside messages.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleLink renders URLs printed by serve.
	StyleLink = lipgloss.NewStyle().Foreground(colorLink).Underline(true)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	styleValue   = lipgloss.NewStyle().Foreground(colorBright)
	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleCached  = lipgloss.NewStyle().Foreground(colorOK)
	styleFresh   = lipgloss.NewStyle().Foreground(colorMuted)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// status line markers
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorOK).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorFail).Render("✗")
	markWarning = lipgloss.NewStyle().Foreground(colorWarn).Render("!")
	markInfo    = lipgloss.NewStyle().Foreground(colorMuted).Render("›")
)

// =============================================================================
// Status Output
// =============================================================================

func printMarked(mark, msg string) {
	fmt.Fprintln(uiOut, mark+" "+msg)
}

func printSuccess(format string, args ...any) {
	printMarked(markSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printMarked(markError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printMarked(markWarning, lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printMarked(markInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status message.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written output file.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints element counts and the cache outcome on one line, e.g.
// "3 nodes · 2 edges · cached".
func printStats(nodeCount, edgeCount int, cached bool) {
	outcome := styleFresh.Render("fresh")
	if cached {
		outcome = styleCached.Render("cached")
	}
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
		outcome,
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(uiOut)
}

package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Terminal styles shared by all subcommands. Lipgloss degrades colors
// automatically based on terminal capabilities.
var (
	// styleLocation is used for file:line:col prefixes and headers.
	styleLocation = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	// styleError is used for error issues and failure messages.
	styleError = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	// styleWarning is used for warning issues.
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	// styleSuccess is used for clean results and resolved values.
	styleSuccess = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	// styleHint is used for severities, counts and secondary text.
	styleHint = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// render applies a style when colors are enabled; otherwise the text is
// returned unmodified.
func render(style lipgloss.Style, text string, colors bool) string {
	if !colors {
		return text
	}
	return style.Render(text)
}

// swatch renders a color block for a hex value, empty without colors.
func swatch(hex string, colors bool) string {
	if !colors {
		return ""
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// useColors decides whether to color output: the --no-color flag and
// NO_COLOR win, FORCE_COLOR forces on, otherwise require a TTY.
func useColors(cmd *cobra.Command) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package wizard implements the interactive `config init` terminal UI:
// a charmbracelet/huh-driven form that scaffolds config.yml from the
// user's answers.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons for wizard output.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconRocket  = "🚀"
	IconGear    = "⚙"
	IconInfo    = "ℹ"
)

// Styles for wizard output.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// Printer handles wizard output.
type Printer struct {
	Out io.Writer
}

// NewPrinter creates a new Printer with stdout as default.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout}
}

func (p *Printer) PrintHeader(icon, title string) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, TitleStyle.Render(icon+" "+title))
	fmt.Fprintln(p.Out)
}

func (p *Printer) PrintSubtitle(title string) {
	fmt.Fprintln(p.Out, SubtitleStyle.Render(title))
}

func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintln(p.Out, SuccessStyle.Render(IconSuccess+" "+msg))
}

func (p *Printer) PrintError(msg string) {
	fmt.Fprintln(p.Out, ErrorStyle.Render(IconError+" "+msg))
}

func (p *Printer) PrintWarning(msg string) {
	fmt.Fprintln(p.Out, WarningStyle.Render(IconWarning+" "+msg))
}

func (p *Printer) PrintInfo(msg string) {
	fmt.Fprintln(p.Out, DimStyle.Render(IconInfo+" "+msg))
}

func (p *Printer) PrintKeyValue(key, value string) {
	fmt.Fprintf(p.Out, "  %s %s\n",
		KeyStyle.Render(key+":"),
		ValueStyle.Render(value))
}

// PrintOrderedSummary prints a configuration summary in the given key order.
func (p *Printer) PrintOrderedSummary(title string, keys []string, items map[string]string) {
	fmt.Fprintln(p.Out)
	p.PrintSubtitle(title)
	fmt.Fprintln(p.Out)

	for _, key := range keys {
		if value, ok := items[key]; ok && value != "" {
			p.PrintKeyValue(key, value)
		}
	}
}

func (p *Printer) PrintNextSteps(steps []string) {
	fmt.Fprintln(p.Out)
	p.PrintSubtitle("Next Steps")
	fmt.Fprintln(p.Out)

	for i, step := range steps {
		fmt.Fprintf(p.Out, "  %d. %s\n", i+1, step)
	}
}

// SanitizeTokenForDisplay masks a secret for display, except for an
// environment-variable reference ("${VAR}"), which is shown as-is.
func SanitizeTokenForDisplay(token string) string {
	if token == "" {
		return "(not set)"
	}
	if strings.HasPrefix(token, "${") && strings.HasSuffix(token, "}") {
		return token
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// FormatBool formats a boolean for display.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/stockview/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// FormatClose formats a close with an arrow against the previous close.
func FormatClose(current, previous float64) string {
	s := decimal.NewFromFloat(current).StringFixed(types.PricePrecision)

	if previous == 0 {
		return s
	}

	if current > previous {
		return s + " ▲"
	} else if current < previous {
		return s + " ▼"
	}

	return s
}

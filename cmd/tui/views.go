package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
)

// recentBars is how many of the newest visible bars the table lists.
const recentBars = 5

// listItem implements list.Item for the provider list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewProviderList lists the registered providers, default first.
func NewProviderList() list.Model {
	items := make([]list.Item, 0)

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			continue
		}

		item := listItem{name: info.Name, description: info.DisplayName + ": " + info.Description}
		if info.Default {
			items = append([]list.Item{item}, items...)
		} else {
			items = append(items, item)
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Data Provider"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewSymbolInput creates the ticker field.
func NewSymbolInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Enter stock symbol (e.g., AAPL)"
	ti.CharLimit = 32
	ti.Width = 40
	ti.Prompt = "> "

	return ti
}

// NewBarsTable creates the table of recent bars.
func NewBarsTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Close", Width: 14},
		{Title: "Open", Width: 10},
		{Title: "High", Width: 10},
		{Title: "Low", Width: 10},
		{Title: "Volume", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(recentBars+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Cell

	t.SetStyles(s)

	return t
}

// UpdateTableRows lists the newest visible bars, most recent first.
func UpdateTableRows(t table.Model, bars []types.PriceBar) table.Model {
	rows := make([]table.Row, 0, recentBars)

	for i := len(bars) - 1; i >= 0 && len(rows) < recentBars; i-- {
		bar := bars[i]

		previous := 0.0
		if i > 0 {
			previous = bars[i-1].Close
		}

		rows = append(rows, table.Row{
			bar.Date.Format(types.DateLayout),
			FormatClose(bar.Close, previous),
			fmt.Sprintf("%.2f", bar.Open),
			fmt.Sprintf("%.2f", bar.High),
			fmt.Sprintf("%.2f", bar.Low),
			humanize.Comma(bar.Volume),
		})
	}

	t.SetRows(rows)

	return t
}

// PresetHelp renders the preset key legend, e.g. "1:5D 2:1M ... 7:All".
func PresetHelp() string {
	parts := make([]string, 0, len(view.Presets()))
	for i, p := range view.Presets() {
		parts = append(parts, fmt.Sprintf("%d:%s", i+1, p.Label()))
	}

	return strings.Join(parts, " ")
}

// MarkersLabel is the toggle button text.
func MarkersLabel(showMarkers bool) string {
	if showMarkers {
		return "Markers On"
	}

	return "Markers Off"
}

// Package chart turns a session snapshot into something a viewer can display:
// a Plotly-compatible figure for the web page, a PNG, or a terminal plot.
package chart

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/types"
)

const (
	// TickFormat is the d3 date format of the x axis.
	TickFormat = "%Y-%m-%d"
	// MarkerSize is the point size when markers are shown.
	MarkerSize = 8

	ModeLinesMarkers = "lines+markers"
	ModeLines        = "lines"
)

// Figure is a Plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a scatter trace.
type Trace struct {
	Type      string    `json:"type"`
	Mode      string    `json:"mode"`
	Name      string    `json:"name"`
	X         []string  `json:"x"`
	Y         []float64 `json:"y"`
	Text      []string  `json:"text"`
	HoverInfo string    `json:"hoverinfo"`
	Marker    Marker    `json:"marker"`
}

type Marker struct {
	Size int `json:"size"`
}

type Layout struct {
	Title Title `json:"title"`
	XAxis Axis  `json:"xaxis"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	TickFormat string   `json:"tickformat"`
	Range      []string `json:"range,omitempty"`
}

// Mode returns the trace mode for the marker flag.
func Mode(showMarkers bool) string {
	if showMarkers {
		return ModeLinesMarkers
	}

	return ModeLines
}

// Project builds the figure for s. Error snapshots and snapshots without a
// resolved range produce an empty figure; the title then carries the error.
func Project(s session.Snapshot) Figure {
	fig := Figure{
		Data: []Trace{},
		Layout: Layout{
			Title: Title{Text: s.ErrorMessage()},
			XAxis: Axis{TickFormat: TickFormat},
		},
	}

	if s.Failed() || s.Series.IsNone() {
		return fig
	}

	r, ok := s.State.Range()
	if !ok {
		return fig
	}

	series := s.Series.Unwrap()
	bars := series.Window(r)

	trace := Trace{
		Type:      "scatter",
		Mode:      Mode(s.State.ShowMarkers),
		Name:      fmt.Sprintf("%s - Close", series.Symbol),
		X:         make([]string, 0, len(bars)),
		Y:         make([]float64, 0, len(bars)),
		Text:      make([]string, 0, len(bars)),
		HoverInfo: "text",
		Marker:    Marker{Size: MarkerSize},
	}

	for _, bar := range bars {
		trace.X = append(trace.X, bar.Date.Format(types.DateLayout))
		trace.Y = append(trace.Y, bar.Close)
		trace.Text = append(trace.Text, HoverText(bar, series.Symbol))
	}

	fig.Data = append(fig.Data, trace)
	fig.Layout.Title.Text = SeriesTitle(series, s.CompanyName)
	fig.Layout.XAxis.Range = []string{r.Start.Format(types.DateLayout), r.End.Format(types.DateLayout)}

	return fig
}

// SeriesTitle describes the series and its most recent close, which may lie outside
// the visible range.
func SeriesTitle(series types.PriceSeries, companyName string) string {
	if companyName == "" {
		companyName = series.Symbol
	}

	last, ok := series.Last()
	if !ok {
		return fmt.Sprintf("Price evolution for %s (%s)", companyName, series.Symbol)
	}

	return fmt.Sprintf("Price evolution for %s (%s) - Last Close: %s on %s",
		companyName, series.Symbol, formatPrice(last.Close), last.Date.Format(types.DateLayout))
}

// HoverText is the annotation shown for one point.
func HoverText(bar types.PriceBar, symbol string) string {
	return fmt.Sprintf("Date: %s<br>Close: %s<br>Open: %s<br>High: %s<br>Low: %s<br>Volume: %s<br>Symbol: %s",
		bar.Date.Format(types.DateLayout),
		formatPrice(bar.Close),
		formatPrice(bar.Open),
		formatPrice(bar.High),
		formatPrice(bar.Low),
		humanize.Comma(bar.Volume),
		symbol,
	)
}

func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(types.PricePrecision)
}

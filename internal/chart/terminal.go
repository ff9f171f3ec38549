package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/types"
)

var (
	lineColor   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	markerColor = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// markerRune marks individual closes when markers are on and there is room for them.
const markerRune = '•'

// RenderTerminal draws the visible window of s as a braille line chart of the
// given size in cells. Error snapshots render their message instead.
func RenderTerminal(s session.Snapshot, width, height int) string {
	if s.Failed() {
		return s.ErrorMessage()
	}

	bars := s.VisibleBars()
	if len(bars) == 0 || width < 10 || height < 4 {
		return ""
	}

	start := bars[0].Date
	span := bars[len(bars)-1].Date.Sub(start).Hours() / 24
	if span == 0 {
		span = 1
	}

	minY, maxY := bars[0].Close, bars[0].Close
	for _, bar := range bars {
		minY = math.Min(minY, bar.Close)
		maxY = math.Max(maxY, bar.Close)
	}

	margin := (maxY - minY) * 0.05
	if margin == 0 {
		margin = math.Max(maxY*0.005, 0.01)
	}

	xLabel := func(_ int, v float64) string {
		day := start.Add(time.Duration(v*24) * time.Hour)
		if span > 730 {
			return day.Format("2006")
		}

		if span > 60 {
			return day.Format("2006-01")
		}

		return day.Format("01-02")
	}

	yLabel := func(_ int, v float64) string {
		return fmt.Sprintf("%.2f", v)
	}

	lc := linechart.New(width, height,
		0, span,
		minY-margin, maxY+margin,
		linechart.WithXYSteps(4, 4),
		linechart.WithXLabelFormatter(xLabel),
		linechart.WithYLabelFormatter(yLabel),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, lineColor),
	)

	point := func(bar types.PriceBar) canvas.Float64Point {
		return canvas.Float64Point{X: bar.Date.Sub(start).Hours() / 24, Y: bar.Close}
	}

	for i := 0; i+1 < len(bars); i++ {
		lc.DrawBrailleLineWithStyle(point(bars[i]), point(bars[i+1]), lineColor)
	}

	if s.State.ShowMarkers && len(bars) <= width/2 {
		for _, bar := range bars {
			lc.DrawRuneWithStyle(point(bar), markerRune, markerColor)
		}
	}

	lc.DrawXYAxisAndLabel()

	var b strings.Builder

	b.WriteString(SeriesTitle(s.Series.Unwrap(), s.CompanyName))
	b.WriteString("\n")
	b.WriteString(lc.View())

	return b.String()
}

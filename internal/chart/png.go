package chart

import (
	"bytes"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
	maxDimension  = 4096
)

// lineStyle draws the close line, with dots when markers are on.
func lineStyle(showMarkers bool) gochart.Style {
	style := gochart.Style{
		StrokeColor: gochart.ColorBlue,
		StrokeWidth: 2,
	}

	if showMarkers {
		style.DotColor = gochart.ColorBlue
		style.DotWidth = 3
	}

	return style
}

func clampDimension(v, fallback int) int {
	if v <= 0 {
		return fallback
	}

	return min(v, maxDimension)
}

// RenderPNG draws the visible window of s. Error snapshots and snapshots with
// nothing visible cannot be drawn and return ErrCodeRenderFailed.
func RenderPNG(s session.Snapshot, width, height int) ([]byte, error) {
	if s.Failed() {
		return nil, errors.New(errors.ErrCodeRenderFailed, s.ErrorMessage())
	}

	bars := s.VisibleBars()
	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "nothing to render for the active range")
	}

	series := s.Series.Unwrap()

	xs := make([]time.Time, 0, len(bars)+1)
	ys := make([]float64, 0, len(bars)+1)

	for _, bar := range bars {
		xs = append(xs, bar.Date)
		ys = append(ys, bar.Close)
	}

	// A time series needs two points to establish its x range.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	ch := gochart.Chart{
		Title:      SeriesTitle(series, s.CompanyName),
		Width:      clampDimension(width, DefaultWidth),
		Height:     clampDimension(height, DefaultHeight),
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name: "Close",
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    series.Symbol + " - Close",
				XValues: xs,
				YValues: ys,
				Style:   lineStyle(s.State.ShowMarkers),
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, "failed to render chart", err)
	}

	return buf.Bytes(), nil
}

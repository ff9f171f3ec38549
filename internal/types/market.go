package types

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used in titles, hover text and the API.
const DateLayout = "2006-01-02"

// PricePrecision is the number of decimals OHLC prices are rounded to.
const PricePrecision = 2

// NormalizeSymbol trims the raw ticker text and upper-cases it.
// The result may be empty; callers decide what an empty symbol means.
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Day returns the calendar date of t as UTC midnight.
func Day(t time.Time) time.Time {
	u := t.UTC()

	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// PriceBar is the OHLCV aggregate of one trading day.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

func (b PriceBar) isEmpty() bool {
	return b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0
}

func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(PricePrecision).InexactFloat64()
}

// PriceSeries is the daily history of one symbol, strictly increasing by date.
// Build it with NewPriceSeries; it is never modified afterwards.
type PriceSeries struct {
	Symbol string
	bars   []PriceBar
}

// NewPriceSeries normalises bars into a series: dates are truncated to the day,
// prices rounded to PricePrecision, all-zero bars (holidays) dropped, bars
// sorted by date and duplicate dates collapsed keeping the last one.
func NewPriceSeries(symbol string, bars []PriceBar) PriceSeries {
	cleaned := make([]PriceBar, 0, len(bars))

	for _, bar := range bars {
		if bar.isEmpty() {
			continue
		}

		if bar.Volume < 0 {
			bar.Volume = 0
		}

		cleaned = append(cleaned, PriceBar{
			Date:   Day(bar.Date),
			Open:   roundPrice(bar.Open),
			High:   roundPrice(bar.High),
			Low:    roundPrice(bar.Low),
			Close:  roundPrice(bar.Close),
			Volume: bar.Volume,
		})
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})

	deduped := make([]PriceBar, 0, len(cleaned))
	for _, bar := range cleaned {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(bar.Date) {
			deduped[n-1] = bar

			continue
		}

		deduped = append(deduped, bar)
	}

	return PriceSeries{
		Symbol: NormalizeSymbol(symbol),
		bars:   deduped,
	}
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.bars)
}

// IsEmpty reports whether the series holds no bars.
func (s PriceSeries) IsEmpty() bool {
	return len(s.bars) == 0
}

// Bars returns a copy of the bars.
func (s PriceSeries) Bars() []PriceBar {
	out := make([]PriceBar, len(s.bars))
	copy(out, s.bars)

	return out
}

// MinDate returns the first date. Zero for an empty series.
func (s PriceSeries) MinDate() time.Time {
	if len(s.bars) == 0 {
		return time.Time{}
	}

	return s.bars[0].Date
}

// MaxDate returns the last date. Zero for an empty series.
func (s PriceSeries) MaxDate() time.Time {
	if len(s.bars) == 0 {
		return time.Time{}
	}

	return s.bars[len(s.bars)-1].Date
}

// Last returns the most recent bar.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.bars) == 0 {
		return PriceBar{}, false
	}

	return s.bars[len(s.bars)-1], true
}

// FullRange returns [MinDate, MaxDate].
func (s PriceSeries) FullRange() DateRange {
	return DateRange{Start: s.MinDate(), End: s.MaxDate()}
}

// Window returns the bars whose date lies inside r, inclusive.
func (s PriceSeries) Window(r DateRange) []PriceBar {
	out := make([]PriceBar, 0)

	for _, bar := range s.bars {
		if r.Contains(bar.Date) {
			out = append(out, bar)
		}
	}

	return out
}

// DateRange is an inclusive window of calendar dates, Start <= End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange orders the two dates so that Start <= End.
func NewDateRange(a, b time.Time) DateRange {
	a, b = Day(a), Day(b)
	if b.Before(a) {
		a, b = b, a
	}

	return DateRange{Start: a, End: b}
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Within reports whether the whole range lies inside outer.
func (r DateRange) Within(outer DateRange) bool {
	return outer.Contains(r.Start) && outer.Contains(r.End)
}

// Clamp restricts the range to bounds. A range entirely outside bounds
// collapses onto the nearest edge.
func (r DateRange) Clamp(bounds DateRange) DateRange {
	start, end := r.Start, r.End

	if start.Before(bounds.Start) {
		start = bounds.Start
	}

	if start.After(bounds.End) {
		start = bounds.End
	}

	if end.After(bounds.End) {
		end = bounds.End
	}

	if end.Before(start) {
		end = start
	}

	return DateRange{Start: start, End: end}
}

// Equal compares both ends.
func (r DateRange) Equal(o DateRange) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// String renders the range as "start..end".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

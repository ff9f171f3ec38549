package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/stockview/internal/types"
)

// SeriesGenerator generates realistic daily price history for tests.
type SeriesGenerator struct {
	rng *rand.Rand
}

// NewSeriesGenerator creates a new SeriesGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewSeriesGenerator(seed int64) *SeriesGenerator {
	return &SeriesGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL", "TSLA")
	Symbol string
	// Start is the first calendar day of the series
	Start time.Time
	// Days is the number of calendar days covered
	Days int
	// SkipWeekends leaves Saturdays and Sundays out, like an equity market
	SkipWeekends bool
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift over the whole series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "AAPL",
		Start:          time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:           365,
		SkipWeekends:   true,
		InitialPrice:   150.0,
		Volatility:     0.015,
		Trend:          0.1,
		VolumeBase:     50_000_000,
		VolumeVariance: 0.3,
	}
}

// Bars creates the raw daily bars described by config.
// Prices follow a geometric Brownian motion.
func (g *SeriesGenerator) Bars(config GeneratorConfig) []types.PriceBar {
	bars := make([]types.PriceBar, 0, config.Days)
	currentPrice := config.InitialPrice
	day := types.Day(config.Start)

	for i := 0; i < config.Days; i, day = i+1, day.AddDate(0, 0, 1) {
		if config.SkipWeekends && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
			continue
		}

		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(1-u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(max(config.Days, 1))

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		high := math.Max(open, close) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, close) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars = append(bars, types.PriceBar{
			Date:   day,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: int64(volume),
		})

		currentPrice = close
	}

	return bars
}

// Generate creates a normalised series described by config.
func (g *SeriesGenerator) Generate(config GeneratorConfig) types.PriceSeries {
	return types.NewPriceSeries(config.Symbol, g.Bars(config))
}

// GenerateDaily is a convenience function for a reproducible weekday series
// of symbol covering days calendar days from start.
func GenerateDaily(symbol string, start time.Time, days int) types.PriceSeries {
	gen := NewSeriesGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol
	config.Start = start
	config.Days = days

	return gen.Generate(config)
}

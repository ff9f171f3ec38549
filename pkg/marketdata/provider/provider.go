package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// NoDataMessage is the description carried by every not-found error.
const NoDataMessage = "No data found for the symbol"

// Provider supplies daily price history for a single symbol.
type Provider interface {
	// FetchSeries returns the daily bars of symbol between start and end, inclusive.
	// An unknown symbol or an empty result is reported as ErrCodeDataNotFound;
	// any other failure carries a market data error code.
	// example:
	// FetchSeries(ctx, "AAPL", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Now())
	FetchSeries(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error)
	// FetchCompanyName returns a display name for symbol, or symbol itself when
	// the provider does not know one.
	FetchCompanyName(ctx context.Context, symbol string) string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
// Polygon expects its API key as config; the others take none.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderYahoo:
		return NewYahooClient(), nil
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// NotFound is the error returned when symbol has no bars.
func NotFound(symbol string) error {
	return errors.Wrap(errors.ErrCodeDataNotFound, NoDataMessage, errors.Newf(errors.ErrCodeInvalidSymbol, "no bars for %s", symbol))
}

// finish validates the bars collected for symbol and builds the series.
func finish(symbol string, bars []types.PriceBar) (types.PriceSeries, error) {
	series := types.NewPriceSeries(symbol, bars)
	if series.IsEmpty() {
		return types.PriceSeries{}, NotFound(symbol)
	}

	return series, nil
}

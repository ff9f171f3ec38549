package provider

import (
	"context"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// YahooChartIterator is the subset of *chart.Iter used by YahooClient.
type YahooChartIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// YahooAPIClient abstracts the finance-go package functions so tests can stub them.
type YahooAPIClient interface {
	Chart(params *chart.Params) YahooChartIterator
	Quote(symbol string) (*finance.Quote, error)
}

type financeGoAPI struct{}

func (financeGoAPI) Chart(params *chart.Params) YahooChartIterator {
	return chart.Get(params)
}

func (financeGoAPI) Quote(symbol string) (*finance.Quote, error) {
	return quote.Get(symbol)
}

// YahooClient reads daily bars and company names from Yahoo Finance.
type YahooClient struct {
	apiClient YahooAPIClient
}

// NewYahooClient creates a provider backed by Yahoo Finance. No credentials are needed.
func NewYahooClient() *YahooClient {
	return NewYahooClientWithAPI(financeGoAPI{})
}

// NewYahooClientWithAPI creates a YahooClient over a custom API client.
func NewYahooClientWithAPI(api YahooAPIClient) *YahooClient {
	return &YahooClient{apiClient: api}
}

func (c *YahooClient) FetchSeries(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "request cancelled", err)
	}

	// Yahoo treats the end as exclusive.
	endExclusive := end.AddDate(0, 0, 1)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&endExclusive),
		Interval: datetime.OneDay,
	}

	iter := c.apiClient.Chart(params)

	bars := make([]types.PriceBar, 0, 256)

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "request cancelled", err)
		}

		bar := iter.Bar()
		if bar == nil {
			continue
		}

		bars = append(bars, types.PriceBar{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:   bar.Open.InexactFloat64(),
			High:   bar.High.InexactFloat64(),
			Low:    bar.Low.InexactFloat64(),
			Close:  bar.Close.InexactFloat64(),
			Volume: int64(bar.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		if isYahooNotFound(err) {
			return types.PriceSeries{}, NotFound(symbol)
		}

		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s from Yahoo Finance", symbol)
	}

	return finish(symbol, bars)
}

func (c *YahooClient) FetchCompanyName(_ context.Context, symbol string) string {
	q, err := c.apiClient.Quote(symbol)
	if err != nil || q == nil || q.ShortName == "" {
		return symbol
	}

	return q.ShortName
}

// isYahooNotFound matches the errors Yahoo returns for unknown tickers.
func isYahooNotFound(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "not found") || strings.Contains(msg, "no data")
}

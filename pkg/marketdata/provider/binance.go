package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// binancePageSize is the number of klines Binance returns per request by default.
const binancePageSize = 500

// BinanceKlinesService is the builder returned by NewKlinesService.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the Binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceRESTClient struct {
	client *binance.Client
}

func (c *binanceRESTClient) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesService{service: c.client.NewKlinesService()}
}

type binanceKlinesService struct {
	service *binance.KlinesService
}

func (s *binanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *binanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceClient reads daily klines for crypto trading pairs (e.g. BTCUSDT) from Binance.
type BinanceClient struct {
	apiClient BinanceAPIClient
}

func NewBinanceClient() (Provider, error) {
	// Public market data needs no key.
	return NewBinanceClientWithAPI(&binanceRESTClient{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a BinanceClient over a custom API client.
func NewBinanceClientWithAPI(api BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: api}
}

// FetchSeries pages through daily klines, using the close time of the last
// kline of each page as the start of the next.
func (c *BinanceClient) FetchSeries(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error) {
	startMillis := start.UnixMilli()
	endMillis := end.AddDate(0, 0, 1).UnixMilli() - 1

	bars := make([]types.PriceBar, 0, 256)
	current := startMillis

	for current <= endMillis {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(current).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			if isBinanceInvalidSymbol(err) {
				return types.PriceSeries{}, NotFound(symbol)
			}

			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines from Binance", symbol)
		}

		page, err := convertKlines(klines)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse %s klines from Binance", symbol)
		}

		bars = append(bars, page...)

		if len(klines) < binancePageSize {
			break
		}

		current = klines[len(klines)-1].CloseTime + 1
	}

	return finish(symbol, bars)
}

// FetchCompanyName returns the pair itself; Binance has no display names.
func (c *BinanceClient) FetchCompanyName(_ context.Context, symbol string) string {
	return symbol
}

func convertKlines(klines []*binance.Kline) ([]types.PriceBar, error) {
	bars := make([]types.PriceBar, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, err
			}

			values[i] = v
		}

		bars = append(bars, types.PriceBar{
			Date:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: int64(values[4]),
		})
	}

	return bars, nil
}

// isBinanceInvalidSymbol matches API error -1121 (invalid symbol).
func isBinanceInvalidSymbol(err error) bool {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == -1121
	}

	return false
}

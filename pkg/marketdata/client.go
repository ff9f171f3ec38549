package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/store"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderYahoo   = provider.ProviderYahoo
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType  `validate:"required,oneof=yahoo polygon binance"`
	PolygonApiKey string        `validate:"required_if=ProviderType polygon"`
	// StorePath enables the series store when set. Use store.InMemory for a process-local cache.
	StorePath string
	CacheTTL  time.Duration `validate:"min=0"`
}

// WarmParams holds the parameters for pre-filling the series store.
type WarmParams struct {
	Symbols []string  `validate:"required,min=1,dive,required"`
	End     time.Time `validate:"required"`
}

// OnWarmProgress reports how many symbols have been processed.
type OnWarmProgress = func(current int, total int, symbol string)

// Client builds the provider a session reads from, optionally backed by the series store.
type Client struct {
	provider provider.Provider
	store    store.SeriesStore
	config   ClientConfig
	validate *validator.Validate
	logger   *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var providerConfig any
	if config.ProviderType == ProviderPolygon {
		providerConfig = config.PolygonApiKey
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, providerConfig)
	if err != nil {
		return nil, err
	}

	var seriesStore store.SeriesStore

	if config.StorePath != "" {
		duck, err := store.NewDuckDBStore(config.StorePath, log)
		if err != nil {
			return nil, err
		}

		seriesStore = duck
	}

	return NewClientWithProvider(config, marketProvider, seriesStore, log), nil
}

// NewClientWithProvider creates a client over an existing provider and store.
// seriesStore may be nil to disable caching.
func NewClientWithProvider(config ClientConfig, p provider.Provider, seriesStore store.SeriesStore, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	if seriesStore != nil {
		p = store.NewCachingProvider(p, seriesStore, config.CacheTTL, log)
	}

	return &Client{
		provider: p,
		store:    seriesStore,
		config:   config,
		validate: validator.New(),
		logger:   log,
	}
}

// Provider returns the provider sessions should fetch from.
func (c *Client) Provider() provider.Provider {
	return c.provider
}

// HasStore reports whether fetched series are persisted.
func (c *Client) HasStore() bool {
	return c.store != nil
}

// Warm fetches the full history of every symbol so later lookups are served
// from the store. Failures are collected per symbol; the first is returned
// after all symbols were attempted.
func (c *Client) Warm(ctx context.Context, params WarmParams, onProgress OnWarmProgress) error {
	if err := c.validate.Struct(params); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid warm parameters", err)
	}

	if c.store == nil {
		return errors.New(errors.ErrCodeInvalidConfiguration, "warming requires a store path")
	}

	end := types.Day(params.End)
	start := end.AddDate(0, 0, -view.HistoryDays)

	var firstErr error

	for i, raw := range params.Symbols {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "warming cancelled", err)
		}

		symbol := types.NormalizeSymbol(raw)

		series, err := c.provider.FetchSeries(ctx, symbol, start, end)
		if err != nil {
			c.logger.Warn("Failed to warm symbol", zap.String("symbol", symbol), zap.Error(err))

			if firstErr == nil {
				firstErr = errors.Wrapf(errors.GetCode(err), err, "failed to warm %s", symbol)
			}
		} else {
			name := c.provider.FetchCompanyName(ctx, symbol)
			c.logger.Info("Warmed symbol",
				zap.String("symbol", symbol),
				zap.String("name", name),
				zap.Int("bars", series.Len()),
			)
		}

		if onProgress != nil {
			onProgress(i+1, len(params.Symbols), symbol)
		}
	}

	return firstErr
}

// Prune drops stored series fetched before olderThan.
func (c *Client) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	if c.store == nil {
		return 0, nil
	}

	return c.store.Prune(ctx, olderThan)
}

// Close releases the store, if any.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}

	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close series store: %w", err)
	}

	return nil
}

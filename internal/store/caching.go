package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

// CachingProvider serves series from a SeriesStore while they are younger than
// the TTL and falls back to the wrapped provider otherwise. Store failures are
// logged and never returned.
type CachingProvider struct {
	provider provider.Provider
	store    SeriesStore
	ttl      time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// CachingOption customises a CachingProvider.
type CachingOption func(*CachingProvider)

// WithNow replaces the clock used to judge freshness.
func WithNow(now func() time.Time) CachingOption {
	return func(c *CachingProvider) {
		c.now = now
	}
}

// NewCachingProvider wraps p with store.
func NewCachingProvider(p provider.Provider, store SeriesStore, ttl time.Duration, log *logger.Logger, opts ...CachingOption) *CachingProvider {
	if log == nil {
		log = logger.NewNop()
	}

	c := &CachingProvider{
		provider: p,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *CachingProvider) fresh(cached Cached) bool {
	return c.now().Sub(cached.FetchedAt) < c.ttl
}

// FetchSeries implements provider.Provider.
func (c *CachingProvider) FetchSeries(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error) {
	existing := Cached{}

	stored, err := c.store.Load(ctx, symbol)
	if err != nil {
		c.logger.Warn("Failed to read series store, fetching from provider", zap.String("symbol", symbol), zap.Error(err))
	} else if stored.IsSome() {
		existing = stored.Unwrap()

		if c.fresh(existing) {
			window := types.NewPriceSeries(symbol, existing.Series.Window(types.NewDateRange(start, end)))
			if !window.IsEmpty() {
				c.logger.Debug("Serving series from store", zap.String("symbol", symbol), zap.Int("bars", window.Len()))

				return window, nil
			}
		}
	}

	series, err := c.provider.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		return types.PriceSeries{}, err
	}

	err = c.store.Save(ctx, Cached{
		Series:      series,
		CompanyName: existing.CompanyName,
		FetchedAt:   c.now().UTC(),
	})
	if err != nil {
		c.logger.Warn("Failed to write series store", zap.String("symbol", symbol), zap.Error(err))
	}

	return series, nil
}

// FetchCompanyName implements provider.Provider. A fetched name is remembered
// only for symbols whose series is already stored.
func (c *CachingProvider) FetchCompanyName(ctx context.Context, symbol string) string {
	stored, err := c.store.Load(ctx, symbol)
	if err != nil {
		c.logger.Warn("Failed to read series store", zap.String("symbol", symbol), zap.Error(err))
	} else if stored.IsSome() && stored.Unwrap().CompanyName != "" {
		return stored.Unwrap().CompanyName
	}

	name := c.provider.FetchCompanyName(ctx, symbol)

	if err == nil && stored.IsSome() && name != "" && name != symbol {
		if err := c.store.SaveCompanyName(ctx, symbol, name); err != nil {
			c.logger.Warn("Failed to write company name", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	return name
}

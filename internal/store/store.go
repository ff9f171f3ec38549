// Package store keeps fetched price series on disk so repeated lookups of the
// same symbol do not hit the market data provider again.
package store

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
)

// Cached is one stored series with the metadata needed to judge its freshness.
type Cached struct {
	Series      types.PriceSeries
	CompanyName string
	FetchedAt   time.Time
}

// SeriesStore persists series by symbol. A symbol has at most one stored series.
type SeriesStore interface {
	// Load returns the stored series for symbol, or None if nothing is stored.
	Load(ctx context.Context, symbol string) (optional.Option[Cached], error)
	// Save replaces whatever is stored for the series' symbol.
	Save(ctx context.Context, cached Cached) error
	// SaveCompanyName updates the name of an already stored symbol.
	SaveCompanyName(ctx context.Context, symbol string, name string) error
	// Prune removes series fetched before olderThan and returns how many were removed.
	Prune(ctx context.Context, olderThan time.Time) (int, error)
	// Close releases the underlying database.
	Close() error
}

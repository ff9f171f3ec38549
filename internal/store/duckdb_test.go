package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
	ctx   context.Context
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (suite *DuckDBStoreTestSuite) SetupTest() {
	store, err := NewDuckDBStore(InMemory, logger.NewNop())
	suite.Require().NoError(err)

	suite.store = store
	suite.ctx = context.Background()
}

func (suite *DuckDBStoreTestSuite) TearDownTest() {
	suite.NoError(suite.store.Close())
}

func weekdaySeries(symbol string, start time.Time, n int) types.PriceSeries {
	bars := make([]types.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, types.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   10 + float64(i),
			High:   11 + float64(i),
			Low:    9 + float64(i),
			Close:  10.25 + float64(i),
			Volume: int64(100 * (i + 1)),
		})
	}

	return types.NewPriceSeries(symbol, bars)
}

func (suite *DuckDBStoreTestSuite) TestLoadMissingSymbol() {
	cached, err := suite.store.Load(suite.ctx, "AAPL")
	suite.NoError(err)
	suite.True(cached.IsNone())
}

func (suite *DuckDBStoreTestSuite) TestSaveAndLoad() {
	series := weekdaySeries("AAPL", types.Date(2024, 1, 1), 2500)
	fetchedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := suite.store.Save(suite.ctx, Cached{Series: series, CompanyName: "Apple Inc.", FetchedAt: fetchedAt})
	suite.Require().NoError(err)

	cached, err := suite.store.Load(suite.ctx, "aapl")
	suite.Require().NoError(err)
	suite.Require().True(cached.IsSome())

	got := cached.Unwrap()
	suite.Equal("Apple Inc.", got.CompanyName)
	suite.True(fetchedAt.Equal(got.FetchedAt))
	suite.Equal(series.Len(), got.Series.Len())
	suite.Equal(series.FullRange(), got.Series.FullRange())

	last, _ := got.Series.Last()
	expected, _ := series.Last()
	suite.Equal(expected.Close, last.Close)
	suite.Equal(expected.Volume, last.Volume)
}

func (suite *DuckDBStoreTestSuite) TestSaveReplacesPreviousSeries() {
	first := weekdaySeries("TSLA", types.Date(2024, 1, 1), 10)
	second := weekdaySeries("TSLA", types.Date(2024, 2, 1), 3)

	suite.Require().NoError(suite.store.Save(suite.ctx, Cached{Series: first, FetchedAt: time.Now()}))
	suite.Require().NoError(suite.store.Save(suite.ctx, Cached{Series: second, FetchedAt: time.Now()}))

	cached, err := suite.store.Load(suite.ctx, "TSLA")
	suite.Require().NoError(err)
	suite.Equal(3, cached.Unwrap().Series.Len())
	suite.Equal(types.Date(2024, 2, 1), cached.Unwrap().Series.MinDate())
}

func (suite *DuckDBStoreTestSuite) TestSaveRejectsEmptySymbol() {
	err := suite.store.Save(suite.ctx, Cached{Series: types.PriceSeries{}})
	suite.Error(err)
}

func (suite *DuckDBStoreTestSuite) TestSaveCompanyName() {
	series := weekdaySeries("MSFT", types.Date(2024, 1, 1), 5)
	suite.Require().NoError(suite.store.Save(suite.ctx, Cached{Series: series, FetchedAt: time.Now()}))

	suite.Require().NoError(suite.store.SaveCompanyName(suite.ctx, "MSFT", "Microsoft Corporation"))
	suite.Require().NoError(suite.store.SaveCompanyName(suite.ctx, "NOPE", "Nobody"))

	cached, err := suite.store.Load(suite.ctx, "MSFT")
	suite.Require().NoError(err)
	suite.Equal("Microsoft Corporation", cached.Unwrap().CompanyName)

	missing, err := suite.store.Load(suite.ctx, "NOPE")
	suite.Require().NoError(err)
	suite.True(missing.IsNone())
}

func (suite *DuckDBStoreTestSuite) TestPrune() {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.store.Save(suite.ctx, Cached{Series: weekdaySeries("OLD", types.Date(2024, 1, 1), 5), FetchedAt: now.Add(-48 * time.Hour)}))
	suite.Require().NoError(suite.store.Save(suite.ctx, Cached{Series: weekdaySeries("NEW", types.Date(2024, 1, 1), 5), FetchedAt: now}))

	removed, err := suite.store.Prune(suite.ctx, now.Add(-24*time.Hour))
	suite.Require().NoError(err)
	suite.Equal(1, removed)

	old, err := suite.store.Load(suite.ctx, "OLD")
	suite.Require().NoError(err)
	suite.True(old.IsNone())

	kept, err := suite.store.Load(suite.ctx, "NEW")
	suite.Require().NoError(err)
	suite.True(kept.IsSome())
}

func (suite *DuckDBStoreTestSuite) TestFileBackedStorePersists() {
	path := filepath.Join(suite.T().TempDir(), "nested", "series.duckdb")

	fileStore, err := NewDuckDBStore(path, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(fileStore.Save(suite.ctx, Cached{Series: weekdaySeries("AAPL", types.Date(2024, 1, 1), 5), FetchedAt: time.Now()}))
	suite.Require().NoError(fileStore.Close())

	reopened, err := NewDuckDBStore(path, nil)
	suite.Require().NoError(err)
	defer reopened.Close()

	cached, err := reopened.Load(suite.ctx, "AAPL")
	suite.Require().NoError(err)
	suite.Equal(5, cached.Unwrap().Series.Len())
}

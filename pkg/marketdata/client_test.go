package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/store"
	"github.com/rxtech-lab/stockview/internal/types"
	stockerrors "github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// ClientTestSuite is a test suite for the Client implementation
type ClientTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	mockStore    *mocks.MockSeriesStore
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

// SetupTest runs before each test
func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.mockStore = mocks.NewMockSeriesStore(suite.ctrl)
}

// TearDownTest runs after each test
func (suite *ClientTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ClientTestSuite) TestNewClientValidation() {
	testCases := []struct {
		name        string
		config      ClientConfig
		expectError bool
	}{
		{name: "yahoo", config: ClientConfig{ProviderType: ProviderYahoo}},
		{name: "binance", config: ClientConfig{ProviderType: ProviderBinance}},
		{name: "polygon with key", config: ClientConfig{ProviderType: ProviderPolygon, PolygonApiKey: "key"}},
		{name: "polygon without key", config: ClientConfig{ProviderType: ProviderPolygon}, expectError: true},
		{name: "missing provider", config: ClientConfig{}, expectError: true},
		{name: "unknown provider", config: ClientConfig{ProviderType: "iex"}, expectError: true},
		{name: "negative ttl", config: ClientConfig{ProviderType: ProviderYahoo, CacheTTL: -time.Second}, expectError: true},
		{name: "in-memory store", config: ClientConfig{ProviderType: ProviderYahoo, StorePath: store.InMemory, CacheTTL: time.Hour}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			client, err := NewClient(tc.config, logger.NewNop())
			if tc.expectError {
				suite.Error(err)
				suite.True(stockerrors.HasCode(err, stockerrors.ErrCodeInvalidConfiguration))
				return
			}

			suite.Require().NoError(err)
			suite.NotNil(client.Provider())
			suite.Equal(tc.config.StorePath != "", client.HasStore())
			suite.NoError(client.Close())
		})
	}
}

func (suite *ClientTestSuite) TestProviderWithoutStoreIsUnwrapped() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderYahoo}, suite.mockProvider, nil, nil)
	suite.Equal(suite.mockProvider, client.Provider())
	suite.False(client.HasStore())

	removed, err := client.Prune(context.Background(), time.Now())
	suite.NoError(err)
	suite.Zero(removed)
}

func (suite *ClientTestSuite) TestProviderWithStoreIsCached() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderYahoo, CacheTTL: time.Hour}, suite.mockProvider, suite.mockStore, nil)
	suite.IsType(&store.CachingProvider{}, client.Provider())

	suite.mockStore.EXPECT().Close().Return(nil)
	suite.NoError(client.Close())
}

func (suite *ClientTestSuite) TestWarm() {
	duck, err := store.NewDuckDBStore(store.InMemory, logger.NewNop())
	suite.Require().NoError(err)

	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderYahoo, CacheTTL: time.Hour}, suite.mockProvider, duck, logger.NewNop())
	defer client.Close()

	end := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)
	aapl := mocks.GenerateDaily("AAPL", types.Date(2024, 1, 1), 150)

	suite.mockProvider.EXPECT().FetchSeries(gomock.Any(), "AAPL", gomock.Any(), types.Date(2024, 6, 3)).Return(aapl, nil)
	suite.mockProvider.EXPECT().FetchCompanyName(gomock.Any(), "AAPL").Return("Apple Inc.")
	suite.mockProvider.EXPECT().FetchSeries(gomock.Any(), "ZZZZ", gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{}, stockerrors.New(stockerrors.ErrCodeDataNotFound, "No data found for the symbol"))

	var progress []string

	err = client.Warm(context.Background(), WarmParams{Symbols: []string{"aapl", "zzzz"}, End: end}, func(current int, total int, symbol string) {
		suite.Equal(2, total)
		progress = append(progress, symbol)
	})
	suite.Error(err)
	suite.True(stockerrors.HasCode(err, stockerrors.ErrCodeDataNotFound))
	suite.Equal([]string{"AAPL", "ZZZZ"}, progress)

	cached, err := duck.Load(context.Background(), "AAPL")
	suite.Require().NoError(err)
	suite.Require().True(cached.IsSome())
	suite.Equal("Apple Inc.", cached.Unwrap().CompanyName)
}

func (suite *ClientTestSuite) TestWarmValidation() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderYahoo}, suite.mockProvider, suite.mockStore, nil)

	err := client.Warm(context.Background(), WarmParams{End: time.Now()}, nil)
	suite.True(stockerrors.HasCode(err, stockerrors.ErrCodeInvalidParameter))

	err = client.Warm(context.Background(), WarmParams{Symbols: []string{""}, End: time.Now()}, nil)
	suite.True(stockerrors.HasCode(err, stockerrors.ErrCodeInvalidParameter))

	noStore := NewClientWithProvider(ClientConfig{ProviderType: ProviderYahoo}, suite.mockProvider, nil, nil)
	err = noStore.Warm(context.Background(), WarmParams{Symbols: []string{"AAPL"}, End: time.Now()}, nil)
	suite.True(stockerrors.HasCode(err, stockerrors.ErrCodeInvalidConfiguration))
}

func (suite *ClientTestSuite) TestClosePropagatesStoreError() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderYahoo}, suite.mockProvider, suite.mockStore, nil)

	suite.mockStore.EXPECT().Close().Return(errors.New("busy"))
	suite.Error(client.Close())
}

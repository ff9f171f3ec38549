package view

import (
	"math/rand"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/stretchr/testify/suite"
)

var testNow = time.Date(2024, 10, 18, 21, 0, 0, 0, time.UTC)

// dailySeries builds n consecutive calendar-day bars starting at start.
func dailySeries(symbol string, start time.Time, n int) types.PriceSeries {
	bars := make([]types.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i%17)
		bars = append(bars, types.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: int64(1000 + i),
		})
	}

	return types.NewPriceSeries(symbol, bars)
}

type ReducerTestSuite struct {
	suite.Suite
	reducer *Reducer
	aapl    types.PriceSeries
	tsla    types.PriceSeries
}

func TestReducerSuite(t *testing.T) {
	suite.Run(t, new(ReducerTestSuite))
}

func (suite *ReducerTestSuite) SetupTest() {
	suite.reducer = NewReducer(WithClock(FixedClock(testNow)))
	suite.aapl = dailySeries("AAPL", types.Date(2015, 1, 1), 3000)
	suite.tsla = dailySeries("TSLA", types.Date(2019, 6, 1), 1500)
}

func (suite *ReducerTestSuite) stateWith(symbol string, r types.DateRange) ViewState {
	return ViewState{
		ActiveSymbol:  symbol,
		ActiveRange:   optional.Some(r),
		ShowMarkers:   true,
		IsInitialLoad: false,
	}
}

func (suite *ReducerTestSuite) TestInitialLoadFetchesDefaultSymbol() {
	t := suite.reducer.Reduce(InitialState(), InitialLoad{}, optional.None[types.PriceSeries]())

	suite.Require().True(t.NeedsFetch())
	spec := t.Fetch.Unwrap()
	suite.Equal("AAPL", spec.Symbol)
	suite.Equal(types.Date(2024, 10, 18), spec.End)
	suite.Equal(types.Date(2024, 10, 18).AddDate(0, 0, -HistoryDays), spec.Start)

	next, err := Finalize(t, suite.aapl)
	suite.Require().NoError(err)
	suite.Equal("AAPL", next.ActiveSymbol)
	suite.Equal(suite.aapl.FullRange(), next.ActiveRange.Unwrap())
	suite.True(next.ShowMarkers)
	suite.False(next.IsInitialLoad)
}

func (suite *ReducerTestSuite) TestInitialLoadIgnoresActionPayload() {
	actions := []Action{
		ToggleMarkers{},
		Search{Raw: "msft"},
		RangePreset{Preset: Preset5D},
	}

	for _, action := range actions {
		t := suite.reducer.Reduce(InitialState(), action, optional.None[types.PriceSeries]())

		suite.Equal("AAPL", t.Next.ActiveSymbol, "action %s", action.Kind())
		suite.True(t.Next.ShowMarkers, "action %s", action.Kind())
		suite.False(t.Next.IsInitialLoad)
		suite.True(t.Next.ActiveRange.IsNone())
		suite.True(t.Preset.IsNone())
		suite.True(t.NeedsFetch())
	}
}

func (suite *ReducerTestSuite) TestInitialLoadFetchesEvenWhenSeriesIsHeld() {
	t := suite.reducer.Reduce(InitialState(), InitialLoad{}, optional.Some(suite.aapl))
	suite.True(t.NeedsFetch())
}

func (suite *ReducerTestSuite) TestRepeatedInitialLoadDoesNotFetchAgain() {
	first := suite.reducer.Reduce(InitialState(), InitialLoad{}, optional.None[types.PriceSeries]())
	state, err := Finalize(first, suite.aapl)
	suite.Require().NoError(err)

	second := suite.reducer.Reduce(state, InitialLoad{}, optional.Some(suite.aapl))
	suite.False(second.NeedsFetch())
	suite.Equal(state, second.Next)
}

func (suite *ReducerTestSuite) TestSearchNewSymbolResetsRange() {
	state := suite.stateWith("AAPL", types.DateRange{Start: types.Date(2023, 1, 1), End: types.Date(2023, 6, 1)})

	t := suite.reducer.Reduce(state, Search{Raw: "tsla"}, optional.Some(suite.aapl))

	suite.Equal("TSLA", t.Next.ActiveSymbol)
	suite.True(t.Next.ActiveRange.IsNone())
	suite.Require().True(t.NeedsFetch())
	suite.Equal("TSLA", t.Fetch.Unwrap().Symbol)

	next, err := Finalize(t, suite.tsla)
	suite.Require().NoError(err)
	suite.Equal(suite.tsla.FullRange(), next.ActiveRange.Unwrap())
}

func (suite *ReducerTestSuite) TestSearchBlankKeepsSymbolAndRange() {
	r := types.DateRange{Start: types.Date(2020, 1, 1), End: types.Date(2021, 1, 1)}
	state := suite.stateWith("AAPL", r)

	for _, raw := range []string{"", "   ", "\t"} {
		t := suite.reducer.Reduce(state, Search{Raw: raw}, optional.Some(suite.aapl))

		suite.Equal("AAPL", t.Next.ActiveSymbol)
		suite.Equal(r, t.Next.ActiveRange.Unwrap())
		suite.False(t.NeedsFetch())
	}
}

func (suite *ReducerTestSuite) TestSearchSameSymbolKeepsRange() {
	r := types.DateRange{Start: types.Date(2020, 1, 1), End: types.Date(2021, 1, 1)}
	state := suite.stateWith("AAPL", r)

	t := suite.reducer.Reduce(state, Search{Raw: " aapl "}, optional.Some(suite.aapl))

	suite.Equal(r, t.Next.ActiveRange.Unwrap())
	suite.False(t.NeedsFetch())
}

func (suite *ReducerTestSuite) TestPresetAgainstHeldSeries() {
	state := suite.stateWith("TSLA", suite.tsla.FullRange())

	t := suite.reducer.Reduce(state, RangePreset{Preset: Preset1Y}, optional.Some(suite.tsla))

	suite.False(t.NeedsFetch())
	max := suite.tsla.MaxDate()
	suite.Equal(types.DateRange{Start: max.AddDate(0, 0, -365), End: max}, t.Next.ActiveRange.Unwrap())
	suite.Equal("TSLA", t.Next.ActiveSymbol)
}

func (suite *ReducerTestSuite) TestPresetOffsets() {
	state := suite.stateWith("AAPL", suite.aapl.FullRange())
	max := suite.aapl.MaxDate()

	tests := []struct {
		preset Preset
		days   int
	}{
		{Preset5D, 5},
		{Preset1M, 30},
		{Preset3M, 93},
		{Preset6M, 182},
		{Preset1Y, 365},
		{Preset5Y, 1825},
	}

	for _, tt := range tests {
		suite.Run(string(tt.preset), func() {
			t := suite.reducer.Reduce(state, RangePreset{Preset: tt.preset}, optional.Some(suite.aapl))
			next, err := Finalize(t, suite.aapl)
			suite.Require().NoError(err)
			suite.Equal(types.DateRange{Start: max.AddDate(0, 0, -tt.days), End: max}, next.ActiveRange.Unwrap())
		})
	}
}

func (suite *ReducerTestSuite) TestPresetAllIsFullWindow() {
	state := suite.stateWith("AAPL", types.DateRange{Start: types.Date(2020, 1, 1), End: types.Date(2020, 2, 1)})

	t := suite.reducer.Reduce(state, RangePreset{Preset: PresetAll}, optional.Some(suite.aapl))
	suite.Equal(suite.aapl.FullRange(), t.Next.ActiveRange.Unwrap())
}

func (suite *ReducerTestSuite) TestPresetLongerThanSeriesIsClamped() {
	short := dailySeries("NEW", types.Date(2024, 1, 1), 60)
	state := suite.stateWith("NEW", short.FullRange())

	t := suite.reducer.Reduce(state, RangePreset{Preset: Preset5Y}, optional.Some(short))
	next, err := Finalize(t, short)
	suite.Require().NoError(err)
	suite.Equal(short.FullRange(), next.ActiveRange.Unwrap())
}

func (suite *ReducerTestSuite) TestPresetWithoutHeldSeriesIsDeferred() {
	state := suite.stateWith("TSLA", suite.tsla.FullRange())

	t := suite.reducer.Reduce(state, RangePreset{Preset: Preset3M}, optional.None[types.PriceSeries]())

	suite.Require().True(t.NeedsFetch())
	suite.Equal("TSLA", t.Fetch.Unwrap().Symbol)
	suite.Equal(Preset3M, t.Preset.Unwrap())

	next, err := Finalize(t, suite.tsla)
	suite.Require().NoError(err)
	max := suite.tsla.MaxDate()
	suite.Equal(types.DateRange{Start: max.AddDate(0, 0, -93), End: max}, next.ActiveRange.Unwrap())
}

func (suite *ReducerTestSuite) TestHeldSeriesForOtherSymbolIsNotReused() {
	state := suite.stateWith("TSLA", suite.tsla.FullRange())

	t := suite.reducer.Reduce(state, ToggleMarkers{}, optional.Some(suite.aapl))
	suite.True(t.NeedsFetch())
	suite.Equal("TSLA", t.Fetch.Unwrap().Symbol)
}

func (suite *ReducerTestSuite) TestToggleMarkersIsDisplayOnly() {
	r := types.DateRange{Start: types.Date(2022, 1, 1), End: types.Date(2022, 3, 1)}
	state := suite.stateWith("AAPL", r)

	t := suite.reducer.Reduce(state, ToggleMarkers{}, optional.Some(suite.aapl))
	suite.False(t.Next.ShowMarkers)
	suite.Equal("AAPL", t.Next.ActiveSymbol)
	suite.Equal(r, t.Next.ActiveRange.Unwrap())
	suite.False(t.NeedsFetch())

	t = suite.reducer.Reduce(t.Next, ToggleMarkers{}, optional.Some(suite.aapl))
	suite.True(t.Next.ShowMarkers)
	suite.Equal(r, t.Next.ActiveRange.Unwrap())
}

func (suite *ReducerTestSuite) TestMarkersPersistAcrossSymbolChange() {
	state := suite.stateWith("AAPL", suite.aapl.FullRange())
	state.ShowMarkers = false

	t := suite.reducer.Reduce(state, Search{Raw: "TSLA"}, optional.Some(suite.aapl))
	suite.False(t.Next.ShowMarkers)
}

func (suite *ReducerTestSuite) TestFinalizeRejectsEmptyOrForeignSeries() {
	t := suite.reducer.Reduce(InitialState(), InitialLoad{}, optional.None[types.PriceSeries]())

	_, err := Finalize(t, types.NewPriceSeries("AAPL", nil))
	suite.Error(err)
	suite.Equal("Error: No data found for the symbol", ErrorMessage(err))

	_, err = Finalize(t, suite.tsla)
	suite.Error(err)
}

func (suite *ReducerTestSuite) TestFinalizeRange() {
	suite.Equal(suite.aapl.FullRange(), FinalizeRange(optional.None[types.DateRange](), suite.aapl))
	suite.Equal(types.DateRange{}, FinalizeRange(optional.None[types.DateRange](), types.NewPriceSeries("X", nil)))

	wide := types.DateRange{Start: types.Date(1990, 1, 1), End: types.Date(2050, 1, 1)}
	suite.Equal(suite.aapl.FullRange(), FinalizeRange(optional.Some(wide), suite.aapl))
}

func (suite *ReducerTestSuite) TestDefaultFetch() {
	spec := suite.reducer.DefaultFetch()
	suite.Equal(DefaultSymbol, spec.Symbol)
	suite.Equal(types.Date(2024, 10, 18), spec.End)
}

// TestRangeStaysInsideSeries drives random action sequences and checks that
// every finalised state shows a range inside its own symbol's series.
func (suite *ReducerTestSuite) TestRangeStaysInsideSeries() {
	universe := map[string]types.PriceSeries{
		"AAPL": suite.aapl,
		"TSLA": suite.tsla,
		"NEW":  dailySeries("NEW", types.Date(2024, 8, 1), 20),
	}
	symbols := []string{"aapl", "TSLA", " new", "", "tsla "}
	rng := rand.New(rand.NewSource(7))

	state := InitialState()
	held := optional.None[types.PriceSeries]()

	for i := 0; i < 2000; i++ {
		var action Action

		switch rng.Intn(4) {
		case 0:
			action = Search{Raw: symbols[rng.Intn(len(symbols))]}
		case 1:
			presets := Presets()
			action = RangePreset{Preset: presets[rng.Intn(len(presets))]}
		case 2:
			action = ToggleMarkers{}
		default:
			action = InitialLoad{}
		}

		previous := state
		t := suite.reducer.Reduce(state, action, held)

		series := held.TakeOr(types.PriceSeries{})
		if t.NeedsFetch() {
			series = universe[t.Fetch.Unwrap().Symbol]
			held = optional.Some(series)
		}

		next, err := Finalize(t, series)
		suite.Require().NoError(err)

		r, ok := next.Range()
		suite.Require().True(ok)
		suite.True(r.Within(series.FullRange()), "step %d: %s outside %s", i, r, series.FullRange())
		suite.False(r.End.Before(r.Start))

		if _, toggled := action.(ToggleMarkers); toggled && !previous.IsInitialLoad {
			suite.Equal(previous.ActiveSymbol, next.ActiveSymbol)
			suite.Equal(previous.ActiveRange, next.ActiveRange)
			suite.NotEqual(previous.ShowMarkers, next.ShowMarkers)
		}

		if next.ActiveSymbol != previous.ActiveSymbol {
			suite.Equal(series.FullRange(), r)
		}

		state = next
	}
}

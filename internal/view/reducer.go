package view

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// HistoryDays is the look-back of every fetch. The whole history is always
// requested; presets only move the visible window.
const HistoryDays = 36500

// FetchSpec asks for the full daily history of Symbol.
type FetchSpec struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Transition is the outcome of one reduction.
//
// Next.ActiveRange may still be None, or may still need clamping; Finalize
// completes it once the series for Next.ActiveSymbol is available.
type Transition struct {
	Next ViewState
	// Fetch is Some when no usable series is held for Next.ActiveSymbol.
	Fetch optional.Option[FetchSpec]
	// Preset is Some when a preset was chosen but has to wait for data.
	Preset optional.Option[Preset]
}

// NeedsFetch reports whether the caller must fetch before finalising.
func (t Transition) NeedsFetch() bool {
	return t.Fetch.IsSome()
}

// Reducer maps (state, action) to the next state. It is pure apart from the
// clock used to date the fetch window.
type Reducer struct {
	clock         Clock
	defaultSymbol string
}

// ReducerOption customises a Reducer.
type ReducerOption func(*Reducer)

// WithClock injects the clock used for fetch windows.
func WithClock(c Clock) ReducerOption {
	return func(r *Reducer) {
		r.clock = c
	}
}

// NewReducer creates a reducer using the system clock.
func NewReducer(opts ...ReducerOption) *Reducer {
	r := &Reducer{
		clock:         SystemClock{},
		defaultSymbol: DefaultSymbol,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reduce computes the transition for action applied to state.
//
// held is the series the caller already has, if any. It is reused only when
// it belongs to the next symbol; the reducer never asks for a fetch on a
// marker toggle or a preset for an unchanged symbol whose series is held.
func (r *Reducer) Reduce(state ViewState, action Action, held optional.Option[types.PriceSeries]) Transition {
	first := state.IsInitialLoad
	if first {
		// The first evaluation always behaves like Search(default) whatever
		// arrived, so the chart is drawn without user input.
		action = Search{Raw: r.defaultSymbol}
	}

	nextSymbol := state.ActiveSymbol
	if search, ok := action.(Search); ok {
		if symbol := types.NormalizeSymbol(search.Raw); symbol != "" {
			nextSymbol = symbol
		}
	}

	if nextSymbol == "" {
		nextSymbol = r.defaultSymbol
	}

	symbolChanged := nextSymbol != state.ActiveSymbol

	nextRange := state.ActiveRange
	if symbolChanged || first {
		nextRange = optional.None[types.DateRange]()
	}

	needsFetch := symbolChanged || first || !holds(held, nextSymbol)

	pending := optional.None[Preset]()
	if p, ok := action.(RangePreset); ok {
		if needsFetch {
			pending = optional.Some(p.Preset)
		} else {
			nextRange = optional.Some(p.Preset.Window(held.Unwrap()))
		}
	}

	showMarkers := state.ShowMarkers
	if _, ok := action.(ToggleMarkers); ok {
		showMarkers = !showMarkers
	}

	t := Transition{
		Next: ViewState{
			ActiveSymbol:  nextSymbol,
			ActiveRange:   nextRange,
			ShowMarkers:   showMarkers,
			IsInitialLoad: false,
		},
		Fetch:  optional.None[FetchSpec](),
		Preset: pending,
	}

	if needsFetch {
		t.Fetch = optional.Some(r.fetchSpec(nextSymbol))
	}

	return t
}

func (r *Reducer) fetchSpec(symbol string) FetchSpec {
	end := types.Day(r.clock.Now())

	return FetchSpec{
		Symbol: symbol,
		Start:  end.AddDate(0, 0, -HistoryDays),
		End:    end,
	}
}

// DefaultFetch is the fetch used to recover the default window after a failure.
func (r *Reducer) DefaultFetch() FetchSpec {
	return r.fetchSpec(r.defaultSymbol)
}

func holds(held optional.Option[types.PriceSeries], symbol string) bool {
	if held.IsNone() {
		return false
	}

	series := held.Unwrap()

	return series.Symbol == symbol && !series.IsEmpty()
}

// FinalizeRange turns a possibly unset range into the range to display:
// unset becomes the full series window, anything else is clamped into it.
// An empty series yields the zero range.
func FinalizeRange(r optional.Option[types.DateRange], series types.PriceSeries) types.DateRange {
	if series.IsEmpty() {
		return types.DateRange{}
	}

	full := series.FullRange()
	if r.IsNone() {
		return full
	}

	return r.Unwrap().Clamp(full)
}

// Finalize completes t against the series fetched or held for t.Next.ActiveSymbol.
// It returns an error when the series is empty or belongs to another symbol.
func Finalize(t Transition, series types.PriceSeries) (ViewState, error) {
	next := t.Next

	if series.IsEmpty() {
		return next, errors.New(errors.ErrCodeDataNotFound, NoDataMessage)
	}

	if series.Symbol != next.ActiveSymbol {
		return next, errors.Newf(errors.ErrCodeInvalidParameter,
			"series for %s cannot finalise state for %s", series.Symbol, next.ActiveSymbol)
	}

	r := next.ActiveRange
	if t.Preset.IsSome() {
		r = optional.Some(t.Preset.Unwrap().Window(series))
	}

	next.ActiveRange = optional.Some(FinalizeRange(r, series))

	return next, nil
}

// Package view holds the dashboard's view-state machine: given the state a
// session currently shows and a user action, it decides the next state and
// whether price history has to be fetched before the chart can be drawn.
package view

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
)

// DefaultSymbol is shown at startup and after any failed fetch.
const DefaultSymbol = "AAPL"

// ViewState is everything a session remembers between actions.
type ViewState struct {
	ActiveSymbol string
	// ActiveRange is None until a series for ActiveSymbol has been seen.
	ActiveRange   optional.Option[types.DateRange]
	ShowMarkers   bool
	IsInitialLoad bool
}

// InitialState is the state a new session starts from.
func InitialState() ViewState {
	return ViewState{
		ActiveSymbol:  DefaultSymbol,
		ActiveRange:   optional.None[types.DateRange](),
		ShowMarkers:   true,
		IsInitialLoad: true,
	}
}

// FailSafe is the state shown after a fetch fails: default symbol, markers on,
// range left for the caller to finalise against the default symbol's series.
func FailSafe() ViewState {
	return ViewState{
		ActiveSymbol:  DefaultSymbol,
		ActiveRange:   optional.None[types.DateRange](),
		ShowMarkers:   true,
		IsInitialLoad: false,
	}
}

// Range returns the active range and whether it is set.
func (s ViewState) Range() (types.DateRange, bool) {
	if s.ActiveRange.IsNone() {
		return types.DateRange{}, false
	}

	return s.ActiveRange.Unwrap(), true
}

package session

import (
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/view"
)

// Snapshot is what a session shows after a dispatch: the view state, the series
// it was resolved against and, after a failed fetch, the message to display
// instead of the chart.
type Snapshot struct {
	SessionID   string
	Version     uint64
	State       view.ViewState
	Series      optional.Option[types.PriceSeries]
	CompanyName string
	Error       optional.Option[string]
}

// Failed reports whether the snapshot shows an error instead of a chart.
func (s Snapshot) Failed() bool {
	return s.Error.IsSome()
}

// ErrorMessage returns the displayed error, or "".
func (s Snapshot) ErrorMessage() string {
	return s.Error.TakeOr("")
}

// VisibleBars returns the bars inside the active range. It is empty while the
// range is unset or no series is held.
func (s Snapshot) VisibleBars() []types.PriceBar {
	r, ok := s.State.Range()
	if !ok || s.Series.IsNone() {
		return nil
	}

	return s.Series.Unwrap().Window(r)
}

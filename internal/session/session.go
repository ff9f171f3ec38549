// Package session serialises the actions of one dashboard viewer: every
// dispatch reduces, fetches and finalises under the session lock, so at most
// one reduction is in flight and actions apply in arrival order.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

// Session owns one view state and the series it was resolved against.
type Session struct {
	id       string
	mu       sync.Mutex
	reducer  *view.Reducer
	provider provider.Provider
	logger   *logger.Logger
	now      func() time.Time

	state view.ViewState
	// held and heldName always describe the same symbol.
	held       optional.Option[types.PriceSeries]
	heldName   string
	errMessage optional.Option[string]
	version    uint64
	lastActive time.Time
}

// Option customises a Session.
type Option func(*Session)

// WithReducer replaces the default reducer, typically to inject a clock.
func WithReducer(r *view.Reducer) Option {
	return func(s *Session) {
		s.reducer = r
	}
}

// WithNow replaces the clock used for idle tracking.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a session in the initial view state. Nothing is fetched until
// the first dispatch.
func New(id string, p provider.Provider, log *logger.Logger, opts ...Option) *Session {
	if log == nil {
		log = logger.NewNop()
	}

	s := &Session{
		id:         id,
		reducer:    view.NewReducer(),
		provider:   p,
		logger:     log,
		now:        time.Now,
		state:      view.InitialState(),
		held:       optional.None[types.PriceSeries](),
		errMessage: optional.None[string](),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.lastActive = s.now()

	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// LastActive returns when the session last received an action.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActive
}

// Snapshot returns the current display without dispatching.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	series := optional.None[types.PriceSeries]()
	name := ""

	if s.held.IsSome() && s.held.Unwrap().Symbol == s.state.ActiveSymbol {
		series = s.held
		name = s.heldName
	}

	return Snapshot{
		SessionID:   s.id,
		Version:     s.version,
		State:       s.state,
		Series:      series,
		CompanyName: name,
		Error:       s.errMessage,
	}
}

// Dispatch applies action and returns the resulting display.
//
// Data failures never surface as errors: they install the fail-safe state and
// attach the message to the snapshot. An error is returned only when ctx is
// done before or during the fetch, in which case the session is left untouched.
func (s *Session) Dispatch(ctx context.Context, action view.Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.snapshotLocked(), errors.Wrap(errors.ErrCodeDataUnavailable, "dispatch cancelled", err)
	}

	started := s.now()
	s.lastActive = started

	t := s.reducer.Reduce(s.state, action, s.held)

	series := s.held.TakeOr(types.PriceSeries{})
	name := s.heldName

	if t.NeedsFetch() {
		spec := t.Fetch.Unwrap()

		fetched, err := s.provider.FetchSeries(ctx, spec.Symbol, spec.Start, spec.End)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.snapshotLocked(), errors.Wrap(errors.ErrCodeDataUnavailable, "dispatch cancelled", ctxErr)
		}

		if err != nil {
			return s.fail(ctx, action, spec.Symbol, err), nil
		}

		series = fetched
		name = s.provider.FetchCompanyName(ctx, spec.Symbol)
	}

	next, err := view.Finalize(t, series)
	if err != nil {
		return s.fail(ctx, action, t.Next.ActiveSymbol, err), nil
	}

	s.state = next
	s.held = optional.Some(series)
	s.heldName = name
	s.errMessage = optional.None[string]()
	s.version++

	r, _ := next.Range()
	s.logger.Info("Dispatched action",
		zap.String("session", s.id),
		zap.String("action", string(action.Kind())),
		zap.String("symbol", next.ActiveSymbol),
		zap.String("range", r.String()),
		zap.Bool("markers", next.ShowMarkers),
		zap.Bool("fetched", t.NeedsFetch()),
		zap.Duration("elapsed", s.now().Sub(started)),
	)

	return s.snapshotLocked(), nil
}

// fail installs the fail-safe state for err and tries to resolve its range
// against the default symbol's series. The default symbol is not fetched again
// when it is the one that just failed.
func (s *Session) fail(ctx context.Context, action view.Action, attempted string, err error) Snapshot {
	message := view.ErrorMessage(err)

	fields := []zap.Field{
		zap.String("session", s.id),
		zap.String("action", string(action.Kind())),
		zap.String("message", message),
		zap.Error(err),
	}
	if errors.IsDataUnavailable(err) {
		s.logger.Warn("Action failed, showing default symbol", fields...)
	} else {
		s.logger.Error("Action failed unexpectedly, showing default symbol", fields...)
	}

	s.state = view.FailSafe()
	s.errMessage = optional.Some(message)
	s.version++

	if attempted == view.DefaultSymbol && !s.holdsDefault() {
		s.held = optional.None[types.PriceSeries]()
		s.heldName = ""

		return s.snapshotLocked()
	}

	if !s.holdsDefault() {
		spec := s.reducer.DefaultFetch()

		series, fetchErr := s.provider.FetchSeries(ctx, spec.Symbol, spec.Start, spec.End)
		if fetchErr != nil || series.IsEmpty() {
			s.logger.Warn("Default symbol unavailable, range left unset",
				zap.String("session", s.id),
				zap.Error(fetchErr),
			)

			s.held = optional.None[types.PriceSeries]()
			s.heldName = ""

			return s.snapshotLocked()
		}

		s.held = optional.Some(series)
		s.heldName = s.provider.FetchCompanyName(ctx, spec.Symbol)
	}

	s.state.ActiveRange = optional.Some(view.FinalizeRange(optional.None[types.DateRange](), s.held.Unwrap()))

	return s.snapshotLocked()
}

func (s *Session) holdsDefault() bool {
	if s.held.IsNone() {
		return false
	}

	held := s.held.Unwrap()

	return held.Symbol == view.DefaultSymbol && !held.IsEmpty()
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

// DefaultIdleTTL is how long an untouched session is kept.
const DefaultIdleTTL = 30 * time.Minute

// Manager creates and looks up sessions by id. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	provider provider.Provider
	logger   *logger.Logger
	idleTTL  time.Duration
	now      func() time.Time
	clock    view.Clock
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL sets how long idle sessions are kept before Expire removes them.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// WithClock sets the clock used both for fetch windows and idle tracking.
func WithClock(c view.Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
		m.now = c.Now
	}
}

// NewManager creates an empty manager whose sessions fetch from p.
func NewManager(p provider.Provider, log *logger.Logger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = logger.NewNop()
	}

	m := &Manager{
		sessions: make(map[string]*Session),
		provider: p,
		logger:   log,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
		clock:    view.SystemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create opens a new session and delivers its InitialLoad.
func (m *Manager) Create(ctx context.Context) (*Session, Snapshot, error) {
	s := New(uuid.New().String(), m.provider, m.logger,
		WithReducer(view.NewReducer(view.WithClock(m.clock))),
		WithNow(m.now),
	)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Debug("Session created", zap.String("session", s.ID()))

	snapshot, err := s.Dispatch(ctx, view.InitialLoad{})
	if err != nil {
		m.Remove(s.ID())

		return nil, Snapshot{}, err
	}

	return s, snapshot, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}

	return s, nil
}

// Remove forgets the session with id. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Expire removes sessions idle for longer than the TTL and returns how many were removed.
// Sessions are inspected outside the manager lock so a slow dispatch does not block lookups.
func (m *Manager) Expire() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.RUnlock()

	var idle []string

	for _, s := range candidates {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s.ID())
		}
	}

	if len(idle) == 0 {
		return 0
	}

	m.mu.Lock()
	for _, id := range idle {
		delete(m.sessions, id)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("Expired idle sessions", zap.Int("removed", len(idle)), zap.Int("remaining", remaining))

	return len(idle)
}

// Run calls Expire every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Expire()
		}
	}
}

package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/observe"
)

const (
	defaultIdleTimeout = 30 * time.Minute
	minSweepInterval   = time.Second
)

// Manager owns the live sessions of the process. Sessions idle for longer
// than the idle timeout are dropped by [Manager.Run]. All methods are safe
// for concurrent use.
type Manager struct {
	engine      Engine
	catalog     *catalog.Catalog
	idleTimeout time.Duration
	metrics     *observe.Metrics
	log         *slog.Logger
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTimeout sets how long an untouched session survives. Default: 30m.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithMetrics records the active-sessions gauge on met.
func WithMetrics(met *observe.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = met }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides the time source for session timestamps and expiry.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager creating sessions over e and cat.
func NewManager(e Engine, cat *catalog.Catalog, opts ...ManagerOption) *Manager {
	m := &Manager{
		engine:      e,
		catalog:     cat,
		idleTimeout: defaultIdleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
	for _, o := range opts {
		o(m)
	}
	if m.idleTimeout <= 0 {
		m.idleTimeout = defaultIdleTimeout
	}
	if m.metrics == nil {
		m.metrics = observe.DefaultMetrics()
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

// Create starts a new session in the research state.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id, err := ulid.New(ulid.Timestamp(m.now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("session: generate id: %w", err)
	}
	s := newSession(id.String(), m.engine, m.catalog, m.now)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.metrics.ActiveSessions.Add(ctx, 1)
	m.log.DebugContext(ctx, "session created", "session_id", s.id)
	return s, nil
}

// Get returns the session with id, or ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session: %q: %w", id, ErrNotFound)
	}
	return s, nil
}

// Delete removes the session with id, or returns ErrNotFound.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session: %q: %w", id, ErrNotFound)
	}
	m.metrics.ActiveSessions.Add(ctx, -1)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until ctx is cancelled. It always returns nil.
func (m *Manager) Run(ctx context.Context) error {
	interval := max(m.idleTimeout/4, minSweepInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.sweep(ctx); n > 0 {
				m.log.InfoContext(ctx, "expired idle sessions", "count", n, "remaining", m.Len())
			}
		}
	}
}

// sweep drops sessions idle for longer than the idle timeout and returns
// how many were dropped.
func (m *Manager) sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.lastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	m.mu.Lock()
	for _, id := range stale {
		// Re-check: the session may have been touched since the scan.
		if s, ok := m.sessions[id]; ok && s.lastActive().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	m.mu.Unlock()

	if n > 0 {
		m.metrics.ActiveSessions.Add(ctx, int64(-n))
	}
	return n
}

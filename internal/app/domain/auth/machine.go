// Package auth holds the authoritative in-memory auth state of a browser context and the
// sign-in flow that drives it.
package auth

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/domain/navigation"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/session"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/observability/metrics"
)

type Phase int

const (
	PhaseBootstrapping Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrapping:
		return "bootstrapping"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Snapshot is the read-only view handed to the guard, views and listeners.
type Snapshot struct {
	IsAuthenticated bool
	Role            models.Role
	IsBootstrapping bool
}

// Navigator performs a full navigation that discards in-memory view state.
type Navigator interface {
	HardRedirect(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) HardRedirect(path string) { f(path) }

type Option func(*Machine)

// WithRoleSwitch enables SwitchRole. Only development builds pass it.
func WithRoleSwitch(enabled bool) Option {
	return func(m *Machine) { m.roleSwitch = enabled }
}

// Machine is the single writer of auth state for one browser context.
// Transitions hold the lock while touching storage so memory and disk move together.
type Machine struct {
	mu         sync.Mutex
	phase      Phase
	role       models.Role
	store      *session.Store
	nav        Navigator
	roleSwitch bool
	logger     *zap.Logger

	listenersMu sync.Mutex
	listeners   map[int]func(Snapshot)
	nextID      int
}

func NewMachine(store *session.Store, nav Navigator, logger *zap.Logger, opts ...Option) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	m := &Machine{
		phase:     PhaseBootstrapping,
		store:     store,
		nav:       nav,
		logger:    logger,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		IsAuthenticated: m.phase == PhaseAuthenticated,
		Role:            m.role,
		IsBootstrapping: m.phase == PhaseBootstrapping,
	}
}

// CurrentState never blocks on I/O beyond the state lock.
func (m *Machine) CurrentState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Bootstrap resolves the initial phase from storage. It only acts while bootstrapping;
// a storage failure keeps the machine there so the next call retries.
func (m *Machine) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseBootstrapping {
		m.mu.Unlock()
		return nil
	}

	sess, ok, err := m.store.Load(ctx)
	if err != nil {
		m.mu.Unlock()
		m.logger.Error("Failed to restore session", zap.Error(err))
		metrics.Get().StorageErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "bootstrap")))
		return err
	}
	if ok {
		m.phase, m.role = PhaseAuthenticated, sess.Role
	} else {
		m.phase, m.role = PhaseUnauthenticated, models.RoleNone
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("Session bootstrapped", zap.Bool("authenticated", snap.IsAuthenticated), zap.String("role", snap.Role.String()))
	m.transitioned(ctx, snap)
	return nil
}

// Login persists sess and moves to Authenticated. A storage failure is logged and the
// in-memory transition still happens; the session then lasts only as long as this process.
func (m *Machine) Login(ctx context.Context, sess models.Session) error {
	if !sess.Complete() {
		return models.ErrInvalidSession
	}

	m.mu.Lock()
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Error("Failed to persist session", zap.Error(err))
		metrics.Get().StorageErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "login")))
	}
	m.phase, m.role = PhaseAuthenticated, sess.Role
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("Signed in", zap.String("role", sess.Role.String()))
	m.transitioned(ctx, snap)
	return nil
}

// Logout is idempotent and always ends Unauthenticated with a redirect to the public landing.
func (m *Machine) Logout(ctx context.Context) {
	m.signOut(ctx, "logout")
}

// ExpireSession handles a 401 from the backend. Only the first call while authenticated
// clears the session and redirects; the rest are no-ops. It reports whether it acted.
func (m *Machine) ExpireSession(ctx context.Context) bool {
	return m.signOut(ctx, "expired")
}

func (m *Machine) signOut(ctx context.Context, reason string) bool {
	m.mu.Lock()
	if reason == "expired" && m.phase != PhaseAuthenticated {
		m.mu.Unlock()
		return false
	}
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("Failed to clear session", zap.String("reason", reason), zap.Error(err))
		metrics.Get().StorageErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", reason)))
	}
	changed := m.phase != PhaseUnauthenticated
	m.phase, m.role = PhaseUnauthenticated, models.RoleNone
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("Signed out", zap.String("reason", reason))
	if changed {
		m.transitioned(ctx, snap)
	}
	m.nav.HardRedirect(navigation.PublicLandingPath)
	return true
}

// SwitchRole rewrites the stored role of an authenticated session. Development only.
func (m *Machine) SwitchRole(ctx context.Context, role models.Role) error {
	if !m.roleSwitch {
		return models.ErrRoleSwitchDisabled
	}
	if !role.Valid() {
		return models.ErrUnknownRole
	}

	m.mu.Lock()
	if m.phase != PhaseAuthenticated {
		m.mu.Unlock()
		return models.ErrUnauthenticated
	}
	sess, ok, err := m.store.Load(ctx)
	if err == nil && ok {
		sess.Role = role
		err = m.store.Save(ctx, sess)
	}
	if err != nil {
		m.logger.Warn("Failed to persist switched role", zap.Error(err))
	}
	m.role = role
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("Role switched", zap.String("role", role.String()))
	m.transitioned(ctx, snap)
	return nil
}

// Subscribe registers fn for every transition and returns its cancel func.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

func (m *Machine) transitioned(ctx context.Context, snap Snapshot) {
	to := PhaseUnauthenticated
	if snap.IsAuthenticated {
		to = PhaseAuthenticated
	}
	metrics.Get().SessionTransitionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to.String())))

	m.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Package client owns the per-browser bundle: session store, auth machine, sign-in service,
// registration wizard and a backend client bound to that browser's token.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/backend"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/auth"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/session"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/wizard"
	"github.com/FACorreiaa/rms-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/rms-templui/internal/pkg/storage"
)

type Bundle struct {
	ID      string
	Store   *session.Store
	Machine *auth.Machine
	Auth    *auth.Service
	Wizard  *wizard.Manager
	API     *backend.Client

	nav *pendingNavigator
}

// TakeRedirect returns and clears the hard redirect requested by the auth machine.
func (b *Bundle) TakeRedirect() (string, bool) {
	return b.nav.take()
}

// pendingNavigator records the machine's hard redirects so the HTTP layer can apply them.
type pendingNavigator struct {
	mu   sync.Mutex
	path string
}

func (n *pendingNavigator) HardRedirect(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *pendingNavigator) take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p := n.path
	n.path = ""
	return p, p != ""
}

type Options struct {
	IdleTTL    time.Duration
	RoleSwitch bool
}

// Registry hands out one Bundle per client id. Idle bundles are evicted; the next
// request rebuilds the bundle from durable storage.
type Registry struct {
	mu      sync.Mutex
	bundles *cache.Cache
	storage storage.Backend
	api     *backend.Client
	opts    Options
	logger  *zap.Logger
}

func NewRegistry(backing storage.Backend, api *backend.Client, opts Options, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	r := &Registry{
		bundles: cache.New(opts.IdleTTL, opts.IdleTTL/2),
		storage: backing,
		api:     api,
		opts:    opts,
		logger:  logger,
	}
	r.bundles.OnEvicted(func(id string, _ interface{}) {
		r.logger.Debug("Client bundle evicted", zap.String("client_id", id))
		r.recordActive(context.Background())
	})
	return r
}

// Get returns the bundle for id, building and bootstrapping it when needed. Each call
// extends the bundle's idle lifetime.
func (r *Registry) Get(ctx context.Context, id string) *Bundle {
	r.mu.Lock()
	b, ok := r.lookup(id)
	if !ok {
		b = r.build(id)
	}
	r.bundles.Set(id, b, cache.DefaultExpiration)
	r.mu.Unlock()

	if !ok {
		r.recordActive(ctx)
	}
	if b.Machine.CurrentState().IsBootstrapping {
		if err := b.Machine.Bootstrap(ctx); err != nil {
			r.logger.Warn("Client bootstrap deferred", zap.String("client_id", id), zap.Error(err))
		}
	}
	return b
}

func (r *Registry) lookup(id string) (*Bundle, bool) {
	v, ok := r.bundles.Get(id)
	if !ok {
		return nil, false
	}
	b, ok := v.(*Bundle)
	return b, ok
}

func (r *Registry) build(id string) *Bundle {
	l := r.logger.With(zap.String("client_id", id))

	store := session.NewStore(storage.NewNamespace(r.storage, id, session.Namespace), l)
	nav := &pendingNavigator{}
	machine := auth.NewMachine(store, nav, l, auth.WithRoleSwitch(r.opts.RoleSwitch))
	api := r.api.WithSession(
		store.Token,
		auth.NewUnauthorizedInterceptor(machine, l).Hook(),
	)
	svc := auth.NewService(machine, api, l)
	wiz := wizard.NewManager(storage.NewNamespace(r.storage, id, wizard.Namespace), api, svc, l)

	machine.Subscribe(func(s auth.Snapshot) {
		l.Debug("Auth state changed",
			zap.Bool("authenticated", s.IsAuthenticated),
			zap.String("role", s.Role.String()))
	})

	l.Debug("Client bundle created")
	return &Bundle{
		ID:      id,
		Store:   store,
		Machine: machine,
		Auth:    svc,
		Wizard:  wiz,
		API:     api,
		nav:     nav,
	}
}

func (r *Registry) Len() int { return r.bundles.ItemCount() }

func (r *Registry) recordActive(ctx context.Context) {
	metrics.Get().ActiveClientsGauge.Record(ctx, int64(r.bundles.ItemCount()))
}

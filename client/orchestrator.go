package client

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// initKey collapses concurrent InitializeAuth calls into one in-flight
// run: overlapping navigation and mount events share a single
// verification instead of racing.
const initKey = "auth-init"

// Orchestrator reconciles the cached identity with the server: it
// verifies the session, falls back to profile lookup and
// auto-registration when the session is stale, and exposes the
// login/logout primitives the route guards build on.
type Orchestrator struct {
	api    *API
	store  *Store
	logger *slog.Logger

	initGroup  singleflight.Group
	retryBase  time.Duration
	maxRetries int

	// redirect performs the client-side navigation after logout. The
	// routing layer injects it; tests stub it.
	redirect func(path string)
}

// OrchestratorOption customizes an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithRetryBase overrides the base delay of the lookup retry backoff
func WithRetryBase(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.retryBase = d }
}

// WithRedirect injects the navigation callback used by Logout
func WithRedirect(redirect func(path string)) OrchestratorOption {
	return func(o *Orchestrator) { o.redirect = redirect }
}

// NewOrchestrator creates an auth orchestrator
func NewOrchestrator(api *API, store *Store, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		api:        api,
		store:      store,
		logger:     logger.With("component", "auth_orchestrator"),
		retryBase:  time.Second,
		maxRetries: 2,
		redirect:   func(string) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// InitializeAuth reconciles the cached identity with the server. It
// never returns an error to its caller: every failure path degrades to
// either an unauthenticated cache or a read-only fallback identity.
// Concurrent calls share one in-flight run.
func (o *Orchestrator) InitializeAuth(ctx context.Context) AuthState {
	result, _, _ := o.initGroup.Do(initKey, func() (interface{}, error) {
		return o.initialize(ctx), nil
	})
	return result.(AuthState)
}

func (o *Orchestrator) initialize(ctx context.Context) AuthState {
	identity, err := o.api.Verify(ctx)
	if err == nil {
		// Terminating success path: the server's answer fully
		// replaces the cache.
		o.store.SetIdentity(identity)
		return o.store.Snapshot()
	}

	cached := o.store.Snapshot()
	if !cached.IsAuth || cached.Email == "" {
		// Anonymous visitor: resolve quietly as unauthenticated.
		o.logger.Debug("verification failed for anonymous visitor", "error", err)
		return cached
	}

	// The cache believes we are logged in but the session did not
	// verify. Re-resolve the profile by email; registration and
	// fallback synthesis guarantee this never hard-blocks the user.
	o.logger.Info("session verification failed, resolving profile by email",
		"email", cached.Email, "error", err)

	resolvedIdentity := o.resolveWithRetries(ctx, cached.Email, cached.Name)
	o.store.SetIdentity(resolvedIdentity)
	return o.store.Snapshot()
}

// Logout logs the user out. The server call is best-effort; the local
// cache and session cookie are cleared unconditionally and the client
// is redirected to the login page. Logout never fails observably.
func (o *Orchestrator) Logout(ctx context.Context) {
	if err := o.api.Logout(ctx); err != nil {
		o.logger.Warn("server logout failed, clearing local state anyway", "error", err)
	}

	o.store.Clear()
	o.api.ClearSessionCookie()
	o.redirect(LoginPath)
}

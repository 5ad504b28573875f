package client

import (
	"context"
	"net/url"
)

// GuardAction tells the caller what to do with a navigation attempt.
type GuardAction int

const (
	// GuardAllow lets the navigation proceed.
	GuardAllow GuardAction = iota
	// GuardRedirect sends the visitor to RedirectTo instead.
	GuardRedirect
)

// GuardDecision is the outcome of a guard check.
type GuardDecision struct {
	Action     GuardAction
	RedirectTo string
}

func allow() GuardDecision {
	return GuardDecision{Action: GuardAllow}
}

func redirectTo(target string) GuardDecision {
	return GuardDecision{Action: GuardRedirect, RedirectTo: target}
}

// Guard runs navigation-time auth checks for both route groups. It
// decides per path whether the visitor may proceed or should be sent
// elsewhere, repairing cache/cookie desync along the way.
type Guard struct {
	api   *API
	store *Store
}

func NewGuard(api *API, store *Store) *Guard {
	return &Guard{api: api, store: store}
}

// Check dispatches on the path's route group. Paths in neither group
// are always allowed.
func (g *Guard) Check(ctx context.Context, path string) GuardDecision {
	switch {
	case IsAuthPath(path):
		return g.checkAuthPath(ctx, path)
	case IsProtectedPath(path):
		return g.checkProtectedPath(ctx, path)
	default:
		return allow()
	}
}

// checkAuthPath handles /login and /logout. Logout is always reachable
// so a stuck session can still be abandoned. A visitor whose session
// verifies gets bounced to the dashboard instead of seeing the login
// page again.
func (g *Guard) checkAuthPath(ctx context.Context, path string) GuardDecision {
	if path == LogoutPath {
		return allow()
	}

	if g.api.HasSessionCookie() {
		identity, err := g.api.Verify(ctx)
		if err == nil {
			g.store.SetIdentity(identity)
			return redirectTo(DashboardPath)
		}
	}

	// Cache says authenticated but there is no usable cookie: the two
	// stores have drifted apart, reset the cache before showing login.
	if g.store.IsAuthenticated() && !g.api.HasSessionCookie() {
		g.store.Clear()
	}

	return allow()
}

// checkProtectedPath gates the protected route group. A present cookie
// that verifies seeds an empty cache; an already-authenticated cache
// with a cookie is trusted without a network round trip.
func (g *Guard) checkProtectedPath(ctx context.Context, path string) GuardDecision {
	hasCookie := g.api.HasSessionCookie()

	if hasCookie {
		if g.store.IsAuthenticated() {
			return allow()
		}
		identity, err := g.api.Verify(ctx)
		if err == nil {
			g.store.SetIdentity(identity)
			return allow()
		}
		return redirectTo(loginRedirect(path))
	}

	if g.store.IsAuthenticated() {
		// Cache claims auth but the cookie is gone: clear and re-login.
		g.store.Clear()
	}
	return redirectTo(loginRedirect(path))
}

// loginRedirect builds the login URL with a back-link to the page the
// visitor was trying to reach.
func loginRedirect(path string) string {
	return LoginPath + "?redirect=" + url.QueryEscape(SafeRedirectTarget(path))
}

package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardFixture(t *testing.T, script *authServerScript) (*Guard, *Store, *API, *authServerScript) {
	t.Helper()

	api, _ := newTestAPI(t, script)
	store := NewStore(NewMemoryState(), newTestLogger(t))
	return NewGuard(api, store), store, api, script
}

func TestGuard_UnclassifiedPathAlwaysAllowed(t *testing.T) {
	guard, _, _, script := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})

	decision := guard.Check(context.Background(), "/about")

	assert.Equal(t, GuardAllow, decision.Action)
	assert.Equal(t, int32(0), script.verifyCalls.Load())
}

func TestGuard_LogoutAlwaysReachable(t *testing.T) {
	guard, store, api, _ := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})
	seedAuthenticatedCache(store, "jane.doe@example.com", "Jane Doe")
	api.SetSessionCookie("encrypted-token")

	decision := guard.Check(context.Background(), LogoutPath)

	assert.Equal(t, GuardAllow, decision.Action)
	// The guard leaves teardown to the logout flow itself
	assert.True(t, store.IsAuthenticated())
}

func TestGuard_LoginWithValidSessionRedirectsToDashboard(t *testing.T) {
	script := &authServerScript{
		verifyStatus:   http.StatusOK,
		verifyIdentity: testIdentity(),
	}
	guard, store, api, _ := newGuardFixture(t, script)
	api.SetSessionCookie("encrypted-token")

	decision := guard.Check(context.Background(), LoginPath)

	require.Equal(t, GuardRedirect, decision.Action)
	assert.Equal(t, DashboardPath, decision.RedirectTo)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "jane.doe@example.com", store.Snapshot().Email)
}

func TestGuard_LoginRepairsCacheCookieDesync(t *testing.T) {
	guard, store, _, script := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})
	seedAuthenticatedCache(store, "jane.doe@example.com", "Jane Doe")
	// No session cookie: the cache is lying

	decision := guard.Check(context.Background(), LoginPath)

	assert.Equal(t, GuardAllow, decision.Action)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, int32(0), script.verifyCalls.Load())
}

func TestGuard_LoginAnonymousAllowed(t *testing.T) {
	guard, store, _, _ := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})

	decision := guard.Check(context.Background(), LoginPath)

	assert.Equal(t, GuardAllow, decision.Action)
	assert.False(t, store.IsAuthenticated())
}

func TestGuard_ProtectedCookieVerifiesSeedsCache(t *testing.T) {
	script := &authServerScript{
		verifyStatus:   http.StatusOK,
		verifyIdentity: testIdentity(),
	}
	guard, store, api, _ := newGuardFixture(t, script)
	api.SetSessionCookie("encrypted-token")

	decision := guard.Check(context.Background(), "/dashboard")

	assert.Equal(t, GuardAllow, decision.Action)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "user-1", store.Snapshot().ID)
}

func TestGuard_ProtectedCachedAuthSkipsReverify(t *testing.T) {
	guard, store, api, script := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})
	seedAuthenticatedCache(store, "jane.doe@example.com", "Jane Doe")
	api.SetSessionCookie("encrypted-token")

	decision := guard.Check(context.Background(), "/asset/123")

	assert.Equal(t, GuardAllow, decision.Action)
	assert.Equal(t, int32(0), script.verifyCalls.Load())
}

func TestGuard_ProtectedCachedAuthWithoutCookieClearsAndRedirects(t *testing.T) {
	guard, store, _, script := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})
	seedAuthenticatedCache(store, "jane.doe@example.com", "Jane Doe")

	decision := guard.Check(context.Background(), "/report")

	require.Equal(t, GuardRedirect, decision.Action)
	assert.Equal(t, "/login?redirect=%2Freport", decision.RedirectTo)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, int32(0), script.verifyCalls.Load())
}

func TestGuard_ProtectedAnonymousRedirectsWithBackLink(t *testing.T) {
	guard, _, _, _ := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})

	decision := guard.Check(context.Background(), "/qr-scanner")

	require.Equal(t, GuardRedirect, decision.Action)
	assert.Equal(t, "/login?redirect=%2Fqr-scanner", decision.RedirectTo)
}

func TestGuard_ProtectedStaleCookieRedirects(t *testing.T) {
	guard, store, api, script := newGuardFixture(t, &authServerScript{verifyStatus: http.StatusUnauthorized})
	api.SetSessionCookie("stale-token")

	decision := guard.Check(context.Background(), "/user")

	require.Equal(t, GuardRedirect, decision.Action)
	assert.Equal(t, "/login?redirect=%2Fuser", decision.RedirectTo)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, int32(1), script.verifyCalls.Load())
}

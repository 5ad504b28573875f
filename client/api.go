package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"asset-backend/app/domain"
	apperrors "asset-backend/app/utils/errors"
)

// API is the HTTP client for the auth endpoints. Session cookies are
// carried in a jar so the client behaves like a browser: the cookie set
// by the login callback rides along on every call.
type API struct {
	baseURL    *url.URL
	cookieName string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAPI creates an API client for the given base URL
func NewAPI(baseURL, cookieName string, logger *slog.Logger) (*API, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &API{
		baseURL:    parsed,
		cookieName: cookieName,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		logger: logger.With("component", "auth_api"),
	}, nil
}

// Verify calls the session verification endpoint. The call is
// cookie-driven and takes no body.
func (a *API) Verify(ctx context.Context) (*domain.Identity, error) {
	resp, err := a.do(ctx, http.MethodPost, "/api/auth/verify", nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeProfileLookup, "verify request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrCodeUnauthorized, "verify returned %d", resp.StatusCode)
	}

	var identity domain.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnauthorized, "verify returned malformed identity", err)
	}
	return &identity, nil
}

// UserByEmail looks up a profile by email. Returns USER_NOT_FOUND for a
// 404 and PROFILE_LOOKUP_FAILED for server-side errors, so callers can
// tell "register me" apart from "try again".
func (a *API) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	path := "/api/users/by-email/" + url.PathEscape(domain.NormalizeEmail(email))
	resp, err := a.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeProfileLookup, "profile lookup failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var user domain.User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeProfileLookup, "malformed profile response", err)
		}
		return &user, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.Newf(apperrors.ErrCodeUserNotFound, "no profile for %s", email)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, apperrors.Newf(apperrors.ErrCodeProfileLookup, "profile lookup returned %d", resp.StatusCode)
	default:
		return nil, apperrors.Newf(apperrors.ErrCodeBadRequest, "profile lookup returned %d", resp.StatusCode)
	}
}

// RegisterRequest attempts auto-registration for the given email
func (a *API) RegisterRequest(ctx context.Context, email, name string) (*domain.User, error) {
	body, err := json.Marshal(domain.RegisterRequest{
		Email: domain.NormalizeEmail(email),
		Name:  name,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRegistrationFailed, "failed to encode registration", err)
	}

	resp, err := a.do(ctx, http.MethodPost, "/api/users/register-request", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRegistrationFailed, "registration request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apperrors.Newf(apperrors.ErrCodeRegistrationFailed, "registration returned %d", resp.StatusCode)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRegistrationFailed, "malformed registration response", err)
	}
	return &user, nil
}

// Logout calls the server logout endpoint. Callers treat failure as
// non-fatal.
func (a *API) Logout(ctx context.Context) error {
	resp, err := a.do(ctx, http.MethodGet, "/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout returned %d", resp.StatusCode)
	}
	return nil
}

// HasSessionCookie reports whether the jar currently holds a non-empty
// session cookie for the API host
func (a *API) HasSessionCookie() bool {
	for _, cookie := range a.httpClient.Jar.Cookies(a.baseURL) {
		if cookie.Name == a.cookieName && cookie.Value != "" {
			return true
		}
	}
	return false
}

// SetSessionCookie places a session cookie in the jar. Used when the
// login callback hands the token to the client runtime directly.
func (a *API) SetSessionCookie(value string) {
	a.httpClient.Jar.SetCookies(a.baseURL, []*http.Cookie{{
		Name:  a.cookieName,
		Value: value,
		Path:  "/",
	}})
}

// ClearSessionCookie drops the session cookie from the jar
func (a *API) ClearSessionCookie() {
	a.httpClient.Jar.SetCookies(a.baseURL, []*http.Cookie{{
		Name:   a.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

func (a *API) do(ctx context.Context, method, path string, body *bytes.Reader) (*http.Response, error) {
	target := strings.TrimRight(a.baseURL.String(), "/") + path

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, target, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return a.httpClient.Do(req)
}

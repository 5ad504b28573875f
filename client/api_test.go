package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-backend/app/domain"
	apperrors "asset-backend/app/utils/errors"
	"asset-backend/app/utils/logger"
)

func newTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func newTestAPI(t *testing.T, handler http.Handler) (*API, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := NewAPI(server.URL, "hcmlSession", newTestLogger(t))
	require.NoError(t, err)
	return api, server
}

func testIdentity() *domain.Identity {
	return &domain.Identity{
		ID:    "user-1",
		Email: "jane.doe@example.com",
		Name:  "Jane Doe",
		Role:  domain.RolePIC,
		Location: []domain.Location{
			{ID: 1, Description: "Head Office"},
		},
	}
}

func TestAPI_Verify(t *testing.T) {
	t.Run("valid session returns identity", func(t *testing.T) {
		api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/auth/verify", r.URL.Path)
			json.NewEncoder(w).Encode(testIdentity())
		}))

		identity, err := api.Verify(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", identity.Email)
		assert.Equal(t, domain.RolePIC, identity.Role)
		require.Len(t, identity.Location, 1)
	})

	t.Run("rejected session maps to unauthorized", func(t *testing.T) {
		api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := api.Verify(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetErrorCode(err))
	})

	t.Run("unreachable server maps to lookup failure", func(t *testing.T) {
		api, server := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := api.Verify(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeProfileLookup, apperrors.GetErrorCode(err))
	})
}

func TestAPI_UserByEmail(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		status       int
		body         any
		expectedCode apperrors.ErrorCode
	}{
		{
			name:   "found",
			status: http.StatusOK,
			body: &domain.User{
				ID:    userID,
				Email: "jane.doe@example.com",
				Name:  "Jane Doe",
				Role:  domain.RolePIC,
			},
		},
		{
			name:         "missing profile maps to user not found",
			status:       http.StatusNotFound,
			expectedCode: apperrors.ErrCodeUserNotFound,
		},
		{
			name:         "server error maps to lookup failure",
			status:       http.StatusInternalServerError,
			expectedCode: apperrors.ErrCodeProfileLookup,
		},
		{
			name:         "unavailable maps to lookup failure",
			status:       http.StatusServiceUnavailable,
			expectedCode: apperrors.ErrCodeProfileLookup,
		},
		{
			name:         "client error maps to bad request",
			status:       http.StatusBadRequest,
			expectedCode: apperrors.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/users/by-email/jane.doe@example.com", r.URL.Path)
				w.WriteHeader(tt.status)
				if tt.body != nil {
					json.NewEncoder(w).Encode(tt.body)
				}
			}))

			user, err := api.UserByEmail(context.Background(), "Jane.Doe@Example.com")
			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, apperrors.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, user.ID)
		})
	}
}

func TestAPI_RegisterRequest(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/users/register-request", r.URL.Path)

			var req domain.RegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "new.user@example.com", req.Email)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(&domain.User{
				ID:    uuid.New(),
				Email: req.Email,
				Name:  req.Name,
				Role:  domain.RoleReadOnly,
			})
		}))

		user, err := api.RegisterRequest(context.Background(), "New.User@Example.com", "New User")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleReadOnly, user.Role)
	})

	t.Run("failure maps to registration failed", func(t *testing.T) {
		api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		_, err := api.RegisterRequest(context.Background(), "new.user@example.com", "")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeRegistrationFailed, apperrors.GetErrorCode(err))
	})
}

func TestAPI_SessionCookie(t *testing.T) {
	api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	assert.False(t, api.HasSessionCookie())

	api.SetSessionCookie("encrypted-token")
	assert.True(t, api.HasSessionCookie())

	api.ClearSessionCookie()
	assert.False(t, api.HasSessionCookie())
}

func TestAPI_SessionCookieRidesRequests(t *testing.T) {
	var seen string
	api, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("hcmlSession"); err == nil {
			seen = cookie.Value
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	api.SetSessionCookie("encrypted-token")
	_, _ = api.Verify(context.Background())
	assert.Equal(t, "encrypted-token", seen)
}

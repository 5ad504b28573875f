package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// IdentityContextKey is the echo context key the resolved identity is
// stored under by RequireSession
const IdentityContextKey = "identity"

// AuthMiddleware provides session-based authentication middleware
type AuthMiddleware struct {
	sessionUsecase port.SessionUsecase
	cookieName     string
	cookieDomain   string
	logger         *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessionUsecase port.SessionUsecase, cookieName, cookieDomain string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessionUsecase: sessionUsecase,
		cookieName:     cookieName,
		cookieDomain:   cookieDomain,
		logger:         logger,
	}
}

// RequireSession middleware that requires a valid session cookie.
// Missing, invalid or expired sessions short-circuit with a structured
// 401 body; unusable cookies are cleared as a side effect.
func (m *AuthMiddleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			cookieValue := ""
			if cookie, err := c.Cookie(m.cookieName); err == nil {
				cookieValue = cookie.Value
			}

			identity, err := m.sessionUsecase.VerifySession(ctx, cookieValue)
			if err != nil {
				code := apperrors.GetErrorCode(err)
				if code == apperrors.ErrCodeInvalidSession || code == apperrors.ErrCodeSessionExpired {
					m.clearSessionCookie(c)
				}
				m.logger.Debug("session verification failed", "code", code, "path", c.Request().URL.Path)
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":  "authentication required",
					"status": "unauthorized",
				})
			}

			// Attach the resolved identity for downstream handlers
			c.Set(IdentityContextKey, identity)
			c.Set("user_id", identity.ID)
			c.Set("user_email", identity.Email)
			c.Set("user_role", string(identity.Role))

			return next(c)
		}
	}
}

// RequireRole middleware that requires one of the given roles. Must run
// after RequireSession.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := c.Get(IdentityContextKey).(*domain.Identity)
			if !ok || identity == nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":  "authentication required",
					"status": "unauthorized",
				})
			}

			if _, ok := allowed[identity.Role]; !ok {
				m.logger.Warn("role check failed",
					"role", identity.Role,
					"email", identity.Email,
					"path", c.Request().URL.Path)
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error":  "insufficient permissions",
					"status": "forbidden",
				})
			}

			return next(c)
		}
	}
}

// RequireAdmin middleware that requires the admin role
func (m *AuthMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return m.RequireRole(domain.RoleAdmin)
}

// clearSessionCookie expires the session cookie on the client
func (m *AuthMiddleware) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
	})
}

package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"asset-backend/app/config"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	sessionUsecase port.SessionUsecase
	urlCodec       port.TokenCodec
	config         *config.Config
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler. urlCodec obscures the
// callback URL handed to the external identity provider.
func NewAuthHandler(sessionUsecase port.SessionUsecase, urlCodec port.TokenCodec, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessionUsecase: sessionUsecase,
		urlCodec:       urlCodec,
		config:         cfg,
		logger:         logger,
	}
}

// Verify verifies the session cookie and returns the resolved identity.
// The endpoint is cookie-driven and takes no body. An unusable cookie
// (invalid or expired) is cleared as a side effect of the 401.
func (h *AuthHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	cookieValue := ""
	if cookie, err := c.Cookie(h.config.SessionCookieName); err == nil {
		cookieValue = cookie.Value
	}

	identity, err := h.sessionUsecase.VerifySession(ctx, cookieValue)
	if err != nil {
		code := apperrors.GetErrorCode(err)
		if code == apperrors.ErrCodeInvalidSession || code == apperrors.ErrCodeSessionExpired {
			h.clearSessionCookie(c)
		}
		return c.JSON(http.StatusUnauthorized, UnauthorizedResponse{
			Error:  "authentication required",
			Status: "unauthorized",
		})
	}

	return c.JSON(http.StatusOK, identity)
}

// Login hands the browser off to the external identity provider. Any
// existing session cookie is cleared first; the provider receives the
// application callback URL encrypted as a query value.
func (h *AuthHandler) Login(c echo.Context) error {
	h.clearSessionCookie(c)

	encrypted, err := h.urlCodec.Encrypt(h.config.RedirectBaseURL)
	if err != nil {
		h.logger.Error("failed to encrypt callback url", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to initiate login",
		})
	}

	target := h.config.APIHost + "api/azure/auth?redirect=" + url.QueryEscape(encrypted)
	return c.Redirect(http.StatusFound, target)
}

// Logout clears the session cookie. Always succeeds; the client treats
// logout as unconditional.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)

	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "logged out",
	})
}

// Decrypt decrypts a raw session token supplied in the request body and
// returns the identity carried inside it. Used by trusted server-side
// callers that hold a token outside the cookie flow.
func (h *AuthHandler) Decrypt(c echo.Context) error {
	ctx := c.Request().Context()

	var req DecryptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
	}

	identity, err := h.sessionUsecase.DecryptToken(ctx, req.Token)
	if err != nil {
		code := apperrors.GetErrorCode(err)
		if code == apperrors.ErrCodeMissingField {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "token is required",
			})
		}
		return c.JSON(http.StatusUnauthorized, UnauthorizedResponse{
			Error:  "invalid token",
			Status: "unauthorized",
		})
	}

	return c.JSON(http.StatusOK, identity)
}

// clearSessionCookie expires the session cookie on the client
func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
	})
}

// Request/response types

type DecryptRequest struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type UnauthorizedResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

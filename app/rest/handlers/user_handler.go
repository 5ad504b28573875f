package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	userUsecase port.UserUsecase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase port.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		logger:      logger,
	}
}

// GetUserByEmail looks up a profile by email. Returns 404 when absent.
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	ctx := c.Request().Context()

	email := c.Param("email")
	user, err := h.userUsecase.GetUserByEmail(ctx, email)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// RegisterRequest handles auto-registration keyed by email. Idempotent:
// an existing user is returned with 200, a newly created one with 201.
func (h *UserHandler) RegisterRequest(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
	}

	user, created, err := h.userUsecase.RegisterRequest(ctx, &req)
	if err != nil {
		return h.writeError(c, err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, user)
}

// ListUsers returns a filtered, paginated page of live users
func (h *UserHandler) ListUsers(c echo.Context) error {
	return h.listUsers(c, false)
}

// ListDeletedUsers returns a filtered, paginated page of soft-deleted users
func (h *UserHandler) ListDeletedUsers(c echo.Context) error {
	return h.listUsers(c, true)
}

func (h *UserHandler) listUsers(c echo.Context, deleted bool) error {
	ctx := c.Request().Context()

	filter := &domain.UserListFilter{
		Query:     c.QueryParam("q"),
		Role:      domain.Role(c.QueryParam("role")),
		Placement: c.QueryParam("placement"),
		Sort:      c.QueryParam("sort"),
		Order:     c.QueryParam("order"),
		Deleted:   deleted,
	}
	filter.LocationID, _ = strconv.Atoi(c.QueryParam("locationId"))
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	users, total, err := h.userUsecase.ListUsers(ctx, filter)
	if err != nil {
		return h.writeError(c, err)
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}

	return c.JSON(http.StatusOK, UserListResponse{
		Data: users,
		Pagination: Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	})
}

// GetUserByID returns a single user by id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid user id",
		})
	}

	user, err := h.userUsecase.GetUserByID(ctx, userID)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a new user (admin only)
func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
	}

	user, err := h.userUsecase.CreateUser(ctx, &req)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// UpdateUser updates a user's profile and location assignments (admin only)
func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid user id",
		})
	}

	var req domain.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
	}

	user, err := h.userUsecase.UpdateUser(ctx, userID, &req)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes a user (admin only)
func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid user id",
		})
	}

	user, err := h.userUsecase.DeleteUser(ctx, userID)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// RestoreUser clears a user's soft-deletion mark (admin only)
func (h *UserHandler) RestoreUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid user id",
		})
	}

	user, err := h.userUsecase.RestoreUser(ctx, userID)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// writeError maps an application error onto a structured HTTP response
func (h *UserHandler) writeError(c echo.Context, err error) error {
	status := apperrors.GetHTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("user request failed", "path", c.Request().URL.Path, "error", err)
	}

	message := "request failed"
	if appErr, ok := apperrors.AsAppError(err); ok {
		message = appErr.Message
	}

	return c.JSON(status, ErrorResponse{Error: message})
}

// Response types

type UserListResponse struct {
	Data       []*domain.User `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

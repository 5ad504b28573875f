package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// LocationHandler handles location reference data HTTP requests
type LocationHandler struct {
	userUsecase port.UserUsecase
	logger      *slog.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(userUsecase port.UserUsecase, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		userUsecase: userUsecase,
		logger:      logger,
	}
}

// ListLocations returns all locations ordered by id
func (h *LocationHandler) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()

	locations, err := h.userUsecase.ListLocations(ctx)
	if err != nil {
		h.logger.Error("failed to list locations", "error", err)
		return c.JSON(apperrors.GetHTTPStatusCode(err), ErrorResponse{
			Error: "failed to list locations",
		})
	}

	return c.JSON(http.StatusOK, LocationListResponse{Data: locations})
}

type LocationListResponse struct {
	Data []domain.Location `json:"data"`
}

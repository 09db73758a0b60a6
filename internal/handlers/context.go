package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anonto42/health-tracker/backend/internal/middleware"
	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(middleware.ContextKeyUser).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func requireUserID(c echo.Context) (uint, error) {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return userID, nil
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// bindAndValidate decodes the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// storageError maps a repository error to an HTTP error. Not-found becomes
// 404 with the given message; anything else is logged and returned as 500.
func storageError(c echo.Context, err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	slog.ErrorContext(c.Request().Context(), "storage error",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

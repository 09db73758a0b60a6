package handlers

import (
	"net/http"
	"strings"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile requests for the authenticated user
type UserHandler struct {
	userRepository     repositories.UserRepository
	reminderRepository repositories.ReminderRepository
	scheduler          ReminderScheduler
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, reminderRepo repositories.ReminderRepository, scheduler ReminderScheduler) *UserHandler {
	return &UserHandler{
		userRepository:     userRepo,
		reminderRepository: reminderRepo,
		scheduler:          scheduler,
	}
}

// RegisterUserRoutes registers profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteProfile)
	g.PUT("/profile/device-token", h.UpdateDeviceToken)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return storageError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return storageError(c, err, "User not found")
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
			return echo.NewHTTPError(http.StatusConflict, "Email already in use")
		}
		user.Email = strings.ToLower(req.Email)
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return storageError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteProfile disarms the user's reminders, then deletes the user and their data
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	owned, err := h.reminderRepository.ListReminders(ctx, userID, models.ReminderFilter{})
	if err != nil {
		return storageError(c, err, "User not found")
	}
	for _, r := range owned {
		h.scheduler.Cancel(r.ID)
	}

	if err := h.userRepository.DeleteUser(ctx, userID); err != nil {
		return storageError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted"})
}

// UpdateDeviceToken registers the FCM token used for push reminders. An empty token unregisters.
func (h *UserHandler) UpdateDeviceToken(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.DeviceTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.userRepository.UpdateDeviceToken(c.Request().Context(), userID, req.Token); err != nil {
		return storageError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Device token updated"})
}

package handlers

import (
	"net/http"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifier Notifier
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.POST("/notifications/test", h.SendTest)
	g.GET("/notifications/settings", h.GetSettings)
}

// GetNotifications returns the caller's unread notifications, oldest first.
// Notifications not tied to a user, like test firings without one, are
// visible to everyone.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	all, err := h.notifier.ListPendingNotifications(c.Request().Context())
	if err != nil {
		return storageError(c, err, "Notification not found")
	}

	mine := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if visibleTo(n, userID) {
			mine = append(mine, n)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": mine,
		"count":         len(mine),
	})
}

// MarkAsRead flags one of the caller's notifications as read. Unread
// notifications that belong to another user are reported as not found.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")

	unread, err := h.notifier.ListPendingNotifications(ctx)
	if err != nil {
		return storageError(c, err, "Notification not found")
	}
	for _, n := range unread {
		if n.ID == id && !visibleTo(n, userID) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
	}

	ok, err := h.notifier.MarkNotificationRead(ctx, id)
	if err != nil {
		return storageError(c, err, "Notification not found")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// SendTest fires a synthetic reminder through the whole pipeline
func (h *NotificationHandler) SendTest(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	if !h.notifier.SendTestNotification(c.Request().Context(), userID) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send test notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Test notification sent"})
}

func (h *NotificationHandler) GetSettings(c echo.Context) error {
	if _, err := requireUserID(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.notifier.Status())
}

// visibleTo reports whether the notification belongs to userID or to no user.
func visibleTo(n models.Notification, userID uint) bool {
	return n.Data.UserID == 0 || n.Data.UserID == userID
}

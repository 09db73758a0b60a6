package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReminderHandler handles reminder CRUD and keeps the scheduler in step with each change
type ReminderHandler struct {
	reminderRepository repositories.ReminderRepository
	scheduler          ReminderScheduler
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminderRepo repositories.ReminderRepository, scheduler ReminderScheduler) *ReminderHandler {
	return &ReminderHandler{
		reminderRepository: reminderRepo,
		scheduler:          scheduler,
	}
}

// RegisterReminderRoutes registers reminder routes
func (h *ReminderHandler) RegisterReminderRoutes(g *echo.Group) {
	g.GET("/reminders", h.GetReminders)
	g.POST("/reminders", h.CreateReminder)
	g.GET("/reminders/:id", h.GetReminder)
	g.PUT("/reminders/:id", h.UpdateReminder)
	g.DELETE("/reminders/:id", h.DeleteReminder)
}

// GetReminders lists the user's reminders, filtered by ?type= and ?active=
func (h *ReminderHandler) GetReminders(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	filter := models.ReminderFilter{Type: c.QueryParam("type")}
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active must be true or false")
		}
		filter.IsActive = &active
	}

	list, err := h.reminderRepository.ListReminders(c.Request().Context(), userID, filter)
	if err != nil {
		return storageError(c, err, "Reminder not found")
	}
	return c.JSON(http.StatusOK, list)
}

// CreateReminder stores a reminder and arms it when active
func (h *ReminderHandler) CreateReminder(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateReminderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	reminder := &models.Reminder{
		UserID:             userID,
		ReminderType:       req.ReminderType,
		TargetID:           req.TargetID,
		Title:              req.Title,
		Message:            req.Message,
		ReminderTime:       req.ReminderTime.UTC(),
		RepeatInterval:     req.RepeatInterval,
		IsActive:           true,
		NotificationMethod: req.NotificationMethod,
	}
	if reminder.RepeatInterval == "" {
		reminder.RepeatInterval = models.RepeatOnce
	}
	if reminder.NotificationMethod == "" {
		reminder.NotificationMethod = models.MethodApp
	}
	if req.IsActive != nil {
		reminder.IsActive = *req.IsActive
	}

	if err := h.reminderRepository.CreateReminder(ctx, reminder); err != nil {
		return storageError(c, err, "Reminder not found")
	}

	if reminder.IsActive {
		h.scheduler.Schedule(ctx, reminder.ID)
	}
	return c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) GetReminder(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	reminder, err := h.reminderRepository.GetReminderForUser(c.Request().Context(), userID, id)
	if err != nil {
		return storageError(c, err, "Reminder not found")
	}
	return c.JSON(http.StatusOK, reminder)
}

// UpdateReminder applies a partial update, then disarms and re-arms the reminder
func (h *ReminderHandler) UpdateReminder(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateReminderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.reminderRepository.GetReminderForUser(ctx, userID, id); err != nil {
		return storageError(c, err, "Reminder not found")
	}

	// Read and write under the reminder's lock so a firing that advanced a
	// recurring reminder is not overwritten with the time it just fired at.
	var reminder *models.Reminder
	_, err = h.scheduler.Update(ctx, id, func(ctx context.Context) error {
		current, err := h.reminderRepository.GetReminderForUser(ctx, userID, id)
		if err != nil {
			return err
		}
		applyReminderUpdate(current, &req)
		if err := h.reminderRepository.UpdateReminder(ctx, current); err != nil {
			return err
		}
		reminder = current
		return nil
	})
	if err != nil {
		return storageError(c, err, "Reminder not found")
	}
	return c.JSON(http.StatusOK, reminder)
}

// DeleteReminder disarms the reminder and deletes it
func (h *ReminderHandler) DeleteReminder(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.reminderRepository.GetReminderForUser(ctx, userID, id); err != nil {
		return storageError(c, err, "Reminder not found")
	}

	err = h.scheduler.Remove(ctx, id, func(ctx context.Context) error {
		return h.reminderRepository.DeleteReminder(ctx, userID, id)
	})
	if err != nil {
		return storageError(c, err, "Reminder not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reminder deleted"})
}

func applyReminderUpdate(r *models.Reminder, req *models.UpdateReminderRequest) {
	if req.ReminderType != nil {
		r.ReminderType = *req.ReminderType
	}
	if req.TargetID != nil {
		r.TargetID = req.TargetID
	}
	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Message != nil {
		r.Message = *req.Message
	}
	if req.ReminderTime != nil {
		r.ReminderTime = req.ReminderTime.UTC()
	}
	if req.RepeatInterval != nil {
		r.RepeatInterval = *req.RepeatInterval
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	if req.NotificationMethod != nil {
		r.NotificationMethod = *req.NotificationMethod
	}
}

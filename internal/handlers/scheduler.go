package handlers

import (
	"context"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/reminders"
)

// ReminderScheduler is the part of the reminder service the reminder and
// profile handlers drive.
type ReminderScheduler interface {
	Schedule(ctx context.Context, id uint) bool
	Cancel(id uint) bool
	Update(ctx context.Context, id uint, persist func(ctx context.Context) error) (bool, error)
	Remove(ctx context.Context, id uint, persist func(ctx context.Context) error) error
}

// Notifier is the part of the reminder service behind the notification routes.
type Notifier interface {
	ListPendingNotifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (bool, error)
	SendTestNotification(ctx context.Context, userID uint) bool
	Status() reminders.Status
}

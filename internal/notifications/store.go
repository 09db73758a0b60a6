// Package notifications keeps the bounded log of fired reminder
// notifications and their read flags.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/google/uuid"
)

// DefaultCapacity is the number of notifications retained by every backend.
const DefaultCapacity = 100

// Store is a bounded, insertion-ordered notification log. Implementations
// serialize Append and MarkRead so concurrent writers never lose updates.
type Store interface {
	// Append records n, assigning an ID and timestamp when missing, and
	// evicts the oldest records beyond capacity.
	Append(ctx context.Context, n *models.Notification) error
	// ListUnread returns unread notifications, oldest first.
	ListUnread(ctx context.Context) ([]models.Notification, error)
	// MarkRead flags the notification as read. It reports false, without
	// error, when no notification has that ID.
	MarkRead(ctx context.Context, id string) (bool, error)
}

// FromSnapshot builds the notification recorded when a reminder fires.
func FromSnapshot(snap models.ReminderSnapshot, at time.Time) models.Notification {
	return models.Notification{
		ID:        NewID(snap.ID, at),
		Type:      models.NotificationTypeReminder,
		Title:     snap.Title,
		Body:      snap.Message,
		Data:      snap,
		Timestamp: at,
	}
}

// NewID derives a notification ID from the reminder ID and the fire time.
// The random suffix keeps two firings in the same second distinct.
func NewID(reminderID string, at time.Time) string {
	return fmt.Sprintf("reminder_%s_%d_%s", reminderID, at.Unix(), uuid.NewString()[:8])
}

func prepare(n *models.Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if n.ID == "" {
		n.ID = NewID(n.Data.ID, n.Timestamp)
	}
	if n.Type == "" {
		n.Type = models.NotificationTypeReminder
	}
}

// Package delivery sends fired reminders to people through external
// transports. Delivery is best effort: channels log failures and report
// them as false, they never return errors or panic.
package delivery

import (
	"context"

	"github.com/anonto42/health-tracker/backend/internal/models"
)

// Recipient is where a reminder should be delivered.
type Recipient struct {
	Name        string
	Email       string
	DeviceToken string
	// Method is the reminder's notification_method.
	Method string
}

type Channel interface {
	Name() string
	// IsEnabled reports whether the transport has credentials configured.
	IsEnabled() bool
	// Accepts reports whether the channel can reach r.
	Accepts(r Recipient) bool
	Send(ctx context.Context, r Recipient, snap models.ReminderSnapshot) bool
}

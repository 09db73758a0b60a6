package delivery

import (
	"context"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/health-tracker/backend/internal/models"
)

// PushSender is the part of the Firebase messaging client the push channel
// uses.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel delivers reminders to a registered device through Firebase
// Cloud Messaging.
type PushChannel struct {
	sender PushSender
	log    *slog.Logger
}

// NewPushChannel returns a push channel. A nil sender disables it.
func NewPushChannel(sender PushSender, log *slog.Logger) *PushChannel {
	return &PushChannel{sender: sender, log: log.With("channel", "push")}
}

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) IsEnabled() bool { return c.sender != nil }

func (c *PushChannel) Accepts(r Recipient) bool {
	return r.DeviceToken != "" && r.Method == models.MethodApp
}

func (c *PushChannel) Send(ctx context.Context, r Recipient, snap models.ReminderSnapshot) bool {
	if !c.IsEnabled() {
		return false
	}

	msg := &messaging.Message{
		Token: r.DeviceToken,
		Notification: &messaging.Notification{
			Title: subject(snap.ReminderType, snap.Title),
			Body:  snap.Message,
		},
		Data: map[string]string{
			"reminder_id":   snap.ID,
			"reminder_type": snap.ReminderType,
			"reminder_time": snap.ReminderTime.UTC().Format(time.RFC3339),
		},
	}

	messageID, err := c.sender.Send(ctx, msg)
	if err != nil {
		c.log.Error("send push notification", "reminder_id", snap.ID, "error", err)
		return false
	}

	c.log.Info("push notification sent", "reminder_id", snap.ID, "message_id", messageID)
	return true
}

package delivery

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailSender is the part of the SendGrid client the email channel uses.
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type EmailSettings struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// EmailChannel delivers reminders through SendGrid.
type EmailChannel struct {
	sender MailSender
	from   *mail.Email
	log    *slog.Logger
}

// NewEmailChannel builds a SendGrid-backed channel. Without an API key the
// channel is disabled.
func NewEmailChannel(settings EmailSettings, log *slog.Logger) *EmailChannel {
	var sender MailSender
	if settings.APIKey != "" {
		sender = sendgrid.NewSendClient(settings.APIKey)
		log.Info("sendgrid email channel initialized", "from", settings.FromEmail)
	} else {
		log.Warn("SENDGRID_API_KEY not set, email notifications disabled")
	}
	return NewEmailChannelWithSender(sender, settings, log)
}

// NewEmailChannelWithSender builds a channel around an existing sender. A nil
// sender disables the channel.
func NewEmailChannelWithSender(sender MailSender, settings EmailSettings, log *slog.Logger) *EmailChannel {
	return &EmailChannel{
		sender: sender,
		from:   mail.NewEmail(settings.FromName, settings.FromEmail),
		log:    log.With("channel", "email"),
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) IsEnabled() bool { return c.sender != nil }

func (c *EmailChannel) Accepts(r Recipient) bool {
	return r.Email != "" && r.Method != models.MethodSMS
}

func (c *EmailChannel) Send(ctx context.Context, r Recipient, snap models.ReminderSnapshot) bool {
	if !c.IsEnabled() {
		c.log.Warn("email channel disabled, reminder not emailed", "reminder_id", snap.ID)
		return false
	}

	msg, err := Render(snap)
	if err != nil {
		c.log.Error("render reminder email", "reminder_id", snap.ID, "error", err)
		return false
	}

	to := mail.NewEmail(r.Name, r.Email)
	email := mail.NewSingleEmail(c.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := c.sender.SendWithContext(ctx, email)
	if err != nil {
		c.log.Error("send reminder email", "reminder_id", snap.ID, "to", r.Email, "error", err)
		return false
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		c.log.Error("sendgrid rejected reminder email",
			"reminder_id", snap.ID,
			"to", r.Email,
			"status", resp.StatusCode,
			"body", resp.Body,
		)
		return false
	}

	c.log.Info("reminder email sent", "reminder_id", snap.ID, "to", r.Email)
	return true
}

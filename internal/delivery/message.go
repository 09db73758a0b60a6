package delivery

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/anonto42/health-tracker/backend/internal/models"
)

const timeLayout = "January 02, 2006 at 03:04 PM"

// Message is a rendered reminder ready for a transport.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

type messageView struct {
	Icon         string
	Title        string
	Message      string
	TypeLabel    string
	ScheduledFor string
}

var htmlBody = htmltemplate.Must(htmltemplate.New("reminder.html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Health Reminder</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #007bff; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
    .reminder-card { background: white; padding: 20px; border-radius: 8px; border-left: 4px solid #007bff; margin: 20px 0; }
    .footer { text-align: center; margin-top: 20px; color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Health Management System</h1>
      <p>Your Health Reminder</p>
    </div>
    <div class="content">
      <div class="reminder-card">
        <h2>{{.Icon}} {{.Title}}</h2>
        <p><strong>Scheduled for:</strong> {{.ScheduledFor}}</p>
        <p><strong>Message:</strong> {{.Message}}</p>
        <p><strong>Type:</strong> {{.TypeLabel}}</p>
      </div>
    </div>
    <div class="footer">
      <p>This is an automated reminder from your Health Management System.</p>
      <p>Please do not reply to this email.</p>
    </div>
  </div>
</body>
</html>
`))

var textBody = texttemplate.Must(texttemplate.New("reminder.txt").Parse(`Health Management System - Reminder

{{.Title}}

Scheduled for: {{.ScheduledFor}}
Type: {{.TypeLabel}}

Message: {{.Message}}

This is an automated reminder from your Health Management System.
Please check your health app for more details.

---
Health Management System`))

// Render formats snap as an email-style message.
func Render(snap models.ReminderSnapshot) (Message, error) {
	title := snap.Title
	if title == "" {
		title = "Health Reminder"
	}

	view := messageView{
		Icon:         typeIcon(snap.ReminderType),
		Title:        title,
		Message:      snap.Message,
		TypeLabel:    typeLabel(snap.ReminderType),
		ScheduledFor: snap.ReminderTime.Format(timeLayout),
	}

	var html, text bytes.Buffer
	if err := htmlBody.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}
	if err := textBody.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("render text body: %w", err)
	}

	return Message{
		Subject: subject(snap.ReminderType, title),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func subject(reminderType, title string) string {
	switch reminderType {
	case models.ReminderTypeMedication:
		return "💊 Medication Reminder: " + title
	case models.ReminderTypeAppointment:
		return "🏥 Appointment Reminder: " + title
	case models.ReminderTypeHealthCheck:
		return "📊 Health Check Reminder: " + title
	default:
		return "🔔 Health Reminder: " + title
	}
}

func typeIcon(reminderType string) string {
	switch reminderType {
	case models.ReminderTypeMedication:
		return "💊"
	case models.ReminderTypeAppointment:
		return "🏥"
	case models.ReminderTypeHealthCheck:
		return "📊"
	default:
		return "🔔"
	}
}

// typeLabel turns "health_check" into "Health Check".
func typeLabel(reminderType string) string {
	if reminderType == "" {
		return "General"
	}
	words := strings.Fields(strings.ReplaceAll(reminderType, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

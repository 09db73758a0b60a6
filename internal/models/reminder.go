package models

import (
	"strconv"
	"time"
)

// Reminder types
const (
	ReminderTypeMedication  = "medication"
	ReminderTypeAppointment = "appointment"
	ReminderTypeHealthCheck = "health_check"
)

// Repeat intervals. RepeatCustom is accepted but never advanced.
const (
	RepeatOnce    = "once"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatCustom  = "custom"
)

// Notification methods. Only app and email are delivered.
const (
	MethodApp   = "app"
	MethodEmail = "email"
	MethodSMS   = "sms"
)

// Reminder is a durable record describing what to notify about and when (PostgreSQL)
type Reminder struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"user_id" gorm:"index;not null"`
	ReminderType       string    `json:"reminder_type" gorm:"size:20;not null;index"`
	TargetID           *uint     `json:"target_id,omitempty"` // medication or appointment ID
	Title              string    `json:"title" gorm:"size:100;not null"`
	Message            string    `json:"message" gorm:"type:text;not null"`
	ReminderTime       time.Time `json:"reminder_time" gorm:"not null;index"`
	RepeatInterval     string    `json:"repeat_interval,omitempty" gorm:"size:20"`
	IsActive           bool      `json:"is_active" gorm:"index"`
	NotificationMethod string    `json:"notification_method" gorm:"size:20"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Recurring reports whether the reminder re-arms itself after firing.
func (r *Reminder) Recurring() bool {
	switch r.RepeatInterval {
	case RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// ReminderSnapshot is a copy of the reminder fields taken when it fires.
type ReminderSnapshot struct {
	ID           string    `json:"id" bson:"id"`
	UserID       uint      `json:"user_id,omitempty" bson:"user_id,omitempty"`
	ReminderType string    `json:"reminder_type" bson:"reminder_type"`
	Title        string    `json:"title" bson:"title"`
	Message      string    `json:"message" bson:"message"`
	ReminderTime time.Time `json:"reminder_time" bson:"reminder_time"`
	TargetID     *uint     `json:"target_id" bson:"target_id,omitempty"`
}

// Snapshot captures the current field values of r.
func (r *Reminder) Snapshot() ReminderSnapshot {
	return ReminderSnapshot{
		ID:           strconv.FormatUint(uint64(r.ID), 10),
		UserID:       r.UserID,
		ReminderType: r.ReminderType,
		Title:        r.Title,
		Message:      r.Message,
		ReminderTime: r.ReminderTime,
		TargetID:     r.TargetID,
	}
}

// ReminderFilter narrows reminder listings
type ReminderFilter struct {
	Type     string
	IsActive *bool
}

// CreateReminderRequest defines the request body for creating a reminder
type CreateReminderRequest struct {
	ReminderType       string    `json:"reminder_type" validate:"required,oneof=medication appointment health_check"`
	TargetID           *uint     `json:"target_id"`
	Title              string    `json:"title" validate:"required,min=1,max=100"`
	Message            string    `json:"message" validate:"required"`
	ReminderTime       time.Time `json:"reminder_time" validate:"required"`
	RepeatInterval     string    `json:"repeat_interval" validate:"omitempty,oneof=once daily weekly monthly custom"`
	IsActive           *bool     `json:"is_active"`
	NotificationMethod string    `json:"notification_method" validate:"omitempty,oneof=app email sms"`
}

// UpdateReminderRequest defines the request body for a partial reminder update
type UpdateReminderRequest struct {
	ReminderType       *string    `json:"reminder_type" validate:"omitempty,oneof=medication appointment health_check"`
	TargetID           *uint      `json:"target_id"`
	Title              *string    `json:"title" validate:"omitempty,min=1,max=100"`
	Message            *string    `json:"message" validate:"omitempty,min=1"`
	ReminderTime       *time.Time `json:"reminder_time"`
	RepeatInterval     *string    `json:"repeat_interval" validate:"omitempty,oneof=once daily weekly monthly custom"`
	IsActive           *bool      `json:"is_active"`
	NotificationMethod *string    `json:"notification_method" validate:"omitempty,oneof=app email sms"`
}

package models

import "time"

// NotificationTypeReminder is the only notification type produced today.
const NotificationTypeReminder = "reminder"

// Notification is one delivered reminder instance. Only Read ever changes.
type Notification struct {
	ID        string           `json:"id" bson:"_id" gorm:"primaryKey;size:96"`
	Type      string           `json:"type" bson:"type" gorm:"size:30"`
	Title     string           `json:"title" bson:"title"`
	Body      string           `json:"body" bson:"body" gorm:"type:text"`
	Data      ReminderSnapshot `json:"data" bson:"data" gorm:"serializer:json"`
	Timestamp time.Time        `json:"timestamp" bson:"timestamp" gorm:"column:recorded_at;index"`
	Read      bool             `json:"read" bson:"read" gorm:"column:is_read;index"`
	// Seq is the insertion order assigned by the database backends.
	Seq int64 `json:"-" bson:"seq" gorm:"autoIncrement;uniqueIndex"`
}

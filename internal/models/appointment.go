package models

import "time"

// Appointment is a scheduled medical appointment (PostgreSQL)
type Appointment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	Title        string    `json:"title" gorm:"size:100;not null"`
	DoctorName   string    `json:"doctor_name,omitempty" gorm:"size:100"`
	HospitalName string    `json:"hospital_name,omitempty" gorm:"size:100"`
	ScheduledAt  time.Time `json:"scheduled_at" gorm:"not null;index"`
	Location     string    `json:"location,omitempty" gorm:"size:200"`
	Notes        string    `json:"notes,omitempty" gorm:"type:text"`
	Status       string    `json:"status" gorm:"size:20;default:scheduled;index"` // scheduled, completed, missed, cancelled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateAppointmentRequest struct {
	Title        string    `json:"title" validate:"required,max=100"`
	DoctorName   string    `json:"doctor_name" validate:"omitempty,max=100"`
	HospitalName string    `json:"hospital_name" validate:"omitempty,max=100"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	Location     string    `json:"location" validate:"omitempty,max=200"`
	Notes        string    `json:"notes"`
	Status       string    `json:"status" validate:"omitempty,oneof=scheduled completed missed cancelled"`
}

type UpdateAppointmentRequest struct {
	Title        string     `json:"title,omitempty" validate:"omitempty,max=100"`
	DoctorName   string     `json:"doctor_name,omitempty" validate:"omitempty,max=100"`
	HospitalName string     `json:"hospital_name,omitempty" validate:"omitempty,max=100"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	Location     string     `json:"location,omitempty" validate:"omitempty,max=200"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed missed cancelled"`
}

package models

import "time"

// Medication represents a medication the user takes (PostgreSQL)
type Medication struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	UserID              uint      `json:"user_id" gorm:"index;not null"`
	Name                string    `json:"name" gorm:"size:100;not null"`
	Dosage              string    `json:"dosage" gorm:"size:50;not null"`
	Frequency           string    `json:"frequency" gorm:"size:50;not null"`
	IntakeTime          string    `json:"intake_time" gorm:"size:100;not null"` // e.g. "08:00, 14:00, 20:00"
	SpecialInstructions string    `json:"special_instructions,omitempty" gorm:"type:text"`
	Status              string    `json:"status" gorm:"size:20;default:active"` // active, inactive, discontinued
	Notes               string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Logs []MedicationLog `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// MedicationLog records one adherence event for a medication (PostgreSQL)
type MedicationLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	MedicationID uint      `json:"medication_id" gorm:"index;not null"`
	TakenAt      time.Time `json:"taken_at"`
	Status       string    `json:"status" gorm:"size:20;default:taken"` // taken, skipped, missed
	Notes        string    `json:"notes,omitempty" gorm:"type:text"`
}

type CreateMedicationRequest struct {
	Name                string `json:"name" validate:"required,min=1,max=100"`
	Dosage              string `json:"dosage" validate:"required,max=50"`
	Frequency           string `json:"frequency" validate:"required,max=50"`
	IntakeTime          string `json:"intake_time" validate:"required,max=100"`
	SpecialInstructions string `json:"special_instructions"`
	Status              string `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
	Notes               string `json:"notes"`
}

type UpdateMedicationRequest struct {
	Name                string `json:"name,omitempty" validate:"omitempty,max=100"`
	Dosage              string `json:"dosage,omitempty" validate:"omitempty,max=50"`
	Frequency           string `json:"frequency,omitempty" validate:"omitempty,max=50"`
	IntakeTime          string `json:"intake_time,omitempty" validate:"omitempty,max=100"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	Status              string `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
	Notes               string `json:"notes,omitempty"`
}

type CreateMedicationLogRequest struct {
	TakenAt *time.Time `json:"taken_at"`
	Status  string     `json:"status" validate:"omitempty,oneof=taken skipped missed"`
	Notes   string     `json:"notes"`
}

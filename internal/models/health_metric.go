package models

import "time"

// HealthMetric is a single recorded measurement (PostgreSQL)
type HealthMetric struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;not null"`
	MetricType string    `json:"metric_type" gorm:"size:50;not null;index"` // blood_pressure, glucose, weight, ...
	Value      float64   `json:"value" gorm:"not null"`
	Unit       string    `json:"unit" gorm:"size:20;not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index"`
	Notes      string    `json:"notes,omitempty" gorm:"type:text"`
	Systolic   *float64  `json:"systolic,omitempty"`  // blood pressure only
	Diastolic  *float64  `json:"diastolic,omitempty"` // blood pressure only
}

type CreateHealthMetricRequest struct {
	MetricType string     `json:"metric_type" validate:"required,max=50"`
	Value      float64    `json:"value" validate:"required"`
	Unit       string     `json:"unit" validate:"required,max=20"`
	RecordedAt *time.Time `json:"recorded_at"`
	Notes      string     `json:"notes"`
	Systolic   *float64   `json:"systolic" validate:"omitempty,gt=0"`
	Diastolic  *float64   `json:"diastolic" validate:"omitempty,gt=0"`
}

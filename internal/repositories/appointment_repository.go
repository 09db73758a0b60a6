package repositories

import (
	"context"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"gorm.io/gorm"
)

// AppointmentRepository defines the interface for appointment operations
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
	GetAppointmentForUser(ctx context.Context, userID, id uint) (*models.Appointment, error)
	ListAppointments(ctx context.Context, userID uint, status string) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, appointment *models.Appointment) error
	DeleteAppointment(ctx context.Context, userID, id uint) error
}

// PostgresAppointmentRepository implements AppointmentRepository for PostgreSQL
type PostgresAppointmentRepository struct {
	db *gorm.DB
}

func NewPostgresAppointmentRepository(db *gorm.DB) *PostgresAppointmentRepository {
	return &PostgresAppointmentRepository{db: db}
}

func (r *PostgresAppointmentRepository) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *PostgresAppointmentRepository) GetAppointmentForUser(ctx context.Context, userID, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListAppointments returns the user's appointments in schedule order
func (r *PostgresAppointmentRepository) ListAppointments(ctx context.Context, userID uint, status string) ([]models.Appointment, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("scheduled_at ASC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *PostgresAppointmentRepository) UpdateAppointment(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

func (r *PostgresAppointmentRepository) DeleteAppointment(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Appointment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"gorm.io/gorm"
)

// ReminderRepository defines the interface for reminder data operations
type ReminderRepository interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	GetReminderByID(ctx context.Context, id uint) (*models.Reminder, error)
	GetReminderForUser(ctx context.Context, userID, id uint) (*models.Reminder, error)
	ListReminders(ctx context.Context, userID uint, filter models.ReminderFilter) ([]models.Reminder, error)
	ListActiveAfter(ctx context.Context, after time.Time) ([]models.Reminder, error)
	ListActive(ctx context.Context) ([]models.Reminder, error)
	UpdateReminder(ctx context.Context, reminder *models.Reminder) error
	UpdateReminderTime(ctx context.Context, id uint, at time.Time) error
	DeleteReminder(ctx context.Context, userID, id uint) error
}

// PostgresReminderRepository implements ReminderRepository for PostgreSQL
type PostgresReminderRepository struct {
	db *gorm.DB
}

func NewPostgresReminderRepository(db *gorm.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

func (r *PostgresReminderRepository) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

// GetReminderByID loads a reminder regardless of owner. Used by the scheduler.
func (r *PostgresReminderRepository) GetReminderByID(ctx context.Context, id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.WithContext(ctx).First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *PostgresReminderRepository) GetReminderForUser(ctx context.Context, userID, id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListReminders returns the user's reminders ordered by reminder time
func (r *PostgresReminderRepository) ListReminders(ctx context.Context, userID uint, filter models.ReminderFilter) ([]models.Reminder, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		query = query.Where("reminder_type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var reminders []models.Reminder
	if err := query.Order("reminder_time ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListActiveAfter returns active reminders due strictly after the given time
func (r *PostgresReminderRepository) ListActiveAfter(ctx context.Context, after time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND reminder_time > ?", true, after).
		Order("reminder_time ASC").
		Find(&reminders).Error
	return reminders, err
}

func (r *PostgresReminderRepository) ListActive(ctx context.Context) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("reminder_time ASC").
		Find(&reminders).Error
	return reminders, err
}

// UpdateReminder saves every field of the reminder, including zero values
func (r *PostgresReminderRepository) UpdateReminder(ctx context.Context, reminder *models.Reminder) error {
	return r.db.WithContext(ctx).Save(reminder).Error
}

// UpdateReminderTime moves a reminder to its next occurrence
func (r *PostgresReminderRepository) UpdateReminderTime(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", id).
		Update("reminder_time", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresReminderRepository) DeleteReminder(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Reminder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

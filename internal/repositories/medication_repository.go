package repositories

import (
	"context"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"gorm.io/gorm"
)

// MedicationRepository defines the interface for medication and adherence log operations
type MedicationRepository interface {
	CreateMedication(ctx context.Context, medication *models.Medication) error
	GetMedicationForUser(ctx context.Context, userID, id uint) (*models.Medication, error)
	ListMedications(ctx context.Context, userID uint, status string) ([]models.Medication, error)
	UpdateMedication(ctx context.Context, medication *models.Medication) error
	DeleteMedication(ctx context.Context, userID, id uint) error
	CreateLog(ctx context.Context, log *models.MedicationLog) error
	ListLogs(ctx context.Context, userID, medicationID uint) ([]models.MedicationLog, error)
}

// PostgresMedicationRepository implements MedicationRepository for PostgreSQL
type PostgresMedicationRepository struct {
	db *gorm.DB
}

func NewPostgresMedicationRepository(db *gorm.DB) *PostgresMedicationRepository {
	return &PostgresMedicationRepository{db: db}
}

func (r *PostgresMedicationRepository) CreateMedication(ctx context.Context, medication *models.Medication) error {
	return r.db.WithContext(ctx).Create(medication).Error
}

func (r *PostgresMedicationRepository) GetMedicationForUser(ctx context.Context, userID, id uint) (*models.Medication, error) {
	var medication models.Medication
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&medication).Error; err != nil {
		return nil, err
	}
	return &medication, nil
}

// ListMedications returns the user's medications, newest first, optionally filtered by status
func (r *PostgresMedicationRepository) ListMedications(ctx context.Context, userID uint, status string) ([]models.Medication, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var medications []models.Medication
	if err := query.Order("created_at DESC").Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (r *PostgresMedicationRepository) UpdateMedication(ctx context.Context, medication *models.Medication) error {
	return r.db.WithContext(ctx).Save(medication).Error
}

// DeleteMedication removes the medication and its logs
func (r *PostgresMedicationRepository) DeleteMedication(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medication_id = ? AND user_id = ?", id, userID).Delete(&models.MedicationLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Medication{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *PostgresMedicationRepository) CreateLog(ctx context.Context, log *models.MedicationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListLogs returns adherence logs for one medication, most recent first
func (r *PostgresMedicationRepository) ListLogs(ctx context.Context, userID, medicationID uint) ([]models.MedicationLog, error) {
	var logs []models.MedicationLog
	err := r.db.WithContext(ctx).
		Where("medication_id = ? AND user_id = ?", medicationID, userID).
		Order("taken_at DESC").
		Find(&logs).Error
	return logs, err
}

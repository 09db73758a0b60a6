package repositories

import (
	"context"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"gorm.io/gorm"
)

// HealthMetricRepository defines the interface for health metric operations
type HealthMetricRepository interface {
	CreateMetric(ctx context.Context, metric *models.HealthMetric) error
	GetMetricForUser(ctx context.Context, userID, id uint) (*models.HealthMetric, error)
	ListMetrics(ctx context.Context, userID uint, metricType string) ([]models.HealthMetric, error)
	DeleteMetric(ctx context.Context, userID, id uint) error
}

// PostgresHealthMetricRepository implements HealthMetricRepository for PostgreSQL
type PostgresHealthMetricRepository struct {
	db *gorm.DB
}

func NewPostgresHealthMetricRepository(db *gorm.DB) *PostgresHealthMetricRepository {
	return &PostgresHealthMetricRepository{db: db}
}

func (r *PostgresHealthMetricRepository) CreateMetric(ctx context.Context, metric *models.HealthMetric) error {
	return r.db.WithContext(ctx).Create(metric).Error
}

func (r *PostgresHealthMetricRepository) GetMetricForUser(ctx context.Context, userID, id uint) (*models.HealthMetric, error) {
	var metric models.HealthMetric
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&metric).Error; err != nil {
		return nil, err
	}
	return &metric, nil
}

// ListMetrics returns the user's measurements, most recent first
func (r *PostgresHealthMetricRepository) ListMetrics(ctx context.Context, userID uint, metricType string) ([]models.HealthMetric, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if metricType != "" {
		query = query.Where("metric_type = ?", metricType)
	}

	var metrics []models.HealthMetric
	if err := query.Order("recorded_at DESC").Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

func (r *PostgresHealthMetricRepository) DeleteMetric(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.HealthMetric{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

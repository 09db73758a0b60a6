package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps notifications in the notifications table, ordered by the
// serial seq column. Retention is enforced inside the insert transaction.
type GormStore struct {
	db       *gorm.DB
	capacity int

	mu sync.Mutex
}

func NewGormStore(db *gorm.DB, capacity int) *GormStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &GormStore{db: db, capacity: capacity}
}

// Migrate creates or updates the notifications table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Notification{})
}

func (s *GormStore) Append(ctx context.Context, n *models.Notification) error {
	prepare(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}

		var total int64
		if err := tx.Model(&models.Notification{}).Count(&total).Error; err != nil {
			return fmt.Errorf("count notifications: %w", err)
		}
		over := int(total) - s.capacity
		if over <= 0 {
			return nil
		}

		var oldest []string
		if err := tx.Model(&models.Notification{}).
			Order("seq ASC").
			Limit(over).
			Pluck("id", &oldest).Error; err != nil {
			return fmt.Errorf("select evicted notifications: %w", err)
		}
		if err := tx.Where("id IN ?", oldest).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("evict notifications: %w", err)
		}
		return nil
	})
}

func (s *GormStore) ListUnread(ctx context.Context) ([]models.Notification, error) {
	var unread []models.Notification
	err := s.db.WithContext(ctx).
		Where("is_read = ?", false).
		Order("seq ASC").
		Find(&unread).Error
	return unread, err
}

func (s *GormStore) MarkRead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

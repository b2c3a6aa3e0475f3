package repositories

import (
	"context"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Notifications struct {
	db *gorm.DB
}

func NewNotificationsRepository(db *gorm.DB) *Notifications {
	return &Notifications{db: db}
}

func (repo *Notifications) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return repo.db.WithContext(ctx).Create(&notifications).Error
}

func (repo *Notifications) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	query := repo.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	notifications := make([]models.Notification, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (repo *Notifications) MarkRead(ctx context.Context, userID string, id uint) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (repo *Notifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (repo *Notifications) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

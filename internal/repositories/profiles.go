package repositories

import (
	"context"
	"errors"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Profiles struct {
	db *gorm.DB
}

func NewProfilesRepository(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

func (repo *Profiles) Add(ctx context.Context, profile *models.Profile) error {
	return repo.db.WithContext(ctx).Create(profile).Error
}

func (repo *Profiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return repo.first(ctx, "id = ?", id)
}

func (repo *Profiles) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return repo.first(ctx, "email = ?", email)
}

func (repo *Profiles) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (repo *Profiles) Update(ctx context.Context, id string, fields map[string]any) error {
	return repo.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields).Error
}

func (repo *Profiles) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return repo.Update(ctx, id, map[string]any{"password_hash": passwordHash})
}

func (repo *Profiles) SetTelegramChatID(ctx context.Context, id string, chatID int64) error {
	return repo.Update(ctx, id, map[string]any{"telegram_chat_id": chatID})
}

func (repo *Profiles) first(ctx context.Context, query string, args ...any) (*models.Profile, error) {
	var profile models.Profile
	if err := repo.db.WithContext(ctx).First(&profile, append([]any{query}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

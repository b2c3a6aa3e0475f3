package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Tokens struct {
	db *gorm.DB
}

func NewTokensRepository(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

func (repo *Tokens) AddRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return repo.db.WithContext(ctx).Create(token).Error
}

func (repo *Tokens) GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := repo.db.WithContext(ctx).First(&token, "token_hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// RevokeRefreshToken reports false when the token was already revoked by a concurrent rotation.
func (repo *Tokens) RevokeRefreshToken(ctx context.Context, id string) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	return res.RowsAffected == 1, res.Error
}

func (repo *Tokens) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	return repo.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (repo *Tokens) AddPasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	return repo.db.WithContext(ctx).Create(reset).Error
}

func (repo *Tokens) GetPasswordResetByHash(ctx context.Context, hash string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	if err := repo.db.WithContext(ctx).First(&reset, "token_hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reset, nil
}

func (repo *Tokens) MarkPasswordResetUsed(ctx context.Context, id uint, usedAt time.Time) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", usedAt)
	return res.RowsAffected == 1, res.Error
}

func (repo *Tokens) RemoveExpired(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	res := repo.db.WithContext(ctx).Delete(&models.RefreshToken{}, "expires_at < ?", before)
	if res.Error != nil {
		return 0, res.Error
	}
	total += res.RowsAffected

	res = repo.db.WithContext(ctx).Delete(&models.PasswordReset{}, "expires_at < ?", before)
	if res.Error != nil {
		return total, res.Error
	}
	return total + res.RowsAffected, nil
}

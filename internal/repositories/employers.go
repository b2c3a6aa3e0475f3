package repositories

import (
	"context"
	"errors"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Employers struct {
	db *gorm.DB
}

func NewEmployersRepository(db *gorm.DB) *Employers {
	return &Employers{db: db}
}

func (repo *Employers) Add(ctx context.Context, employer *models.Employer) error {
	return repo.db.WithContext(ctx).Create(employer).Error
}

func (repo *Employers) GetByUserID(ctx context.Context, userID string) (*models.Employer, error) {
	return repo.first(ctx, "user_id = ?", userID)
}

func (repo *Employers) GetByCompany(ctx context.Context, companyID uint) ([]models.Employer, error) {
	employers := make([]models.Employer, 0)
	if err := repo.db.WithContext(ctx).Preload("Profile").
		Find(&employers, "company_id = ?", companyID).Error; err != nil {
		return nil, err
	}
	return employers, nil
}

func (repo *Employers) Update(ctx context.Context, id uint, fields map[string]any) error {
	return repo.db.WithContext(ctx).Model(&models.Employer{}).Where("id = ?", id).Updates(fields).Error
}

func (repo *Employers) first(ctx context.Context, query string, args ...any) (*models.Employer, error) {
	var employer models.Employer
	err := repo.db.WithContext(ctx).Preload("Company").Preload("Profile").
		First(&employer, append([]any{query}, args...)...).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employer, nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Companies struct {
	db *gorm.DB
}

func NewCompaniesRepository(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

func (repo *Companies) Add(ctx context.Context, company *models.Company) error {
	return repo.db.WithContext(ctx).Create(company).Error
}

func (repo *Companies) GetAll(ctx context.Context) ([]models.Company, error) {
	companies := make([]models.Company, 0)
	if err := repo.db.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (repo *Companies) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := repo.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (repo *Companies) Update(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected > 0, res.Error
}

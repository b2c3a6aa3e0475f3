package repositories

import (
	"context"
	"errors"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Skills struct {
	db *gorm.DB
}

func NewSkillsRepository(db *gorm.DB) *Skills {
	return &Skills{db: db}
}

func (repo *Skills) GetAll(ctx context.Context) ([]models.Skill, error) {
	skills := make([]models.Skill, 0)
	if err := repo.db.WithContext(ctx).Order("name").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (repo *Skills) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	var skill models.Skill
	if err := repo.db.WithContext(ctx).First(&skill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &skill, nil
}

func (repo *Skills) GetByIDs(ctx context.Context, ids []uint) ([]models.Skill, error) {
	skills := make([]models.Skill, 0, len(ids))
	if len(ids) == 0 {
		return skills, nil
	}
	if err := repo.db.WithContext(ctx).Find(&skills, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (repo *Skills) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Skill{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error
	return count > 0, err
}

func (repo *Skills) Add(ctx context.Context, skill *models.Skill) error {
	return repo.db.WithContext(ctx).Create(skill).Error
}

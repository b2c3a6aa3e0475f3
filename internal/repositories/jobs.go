package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type JobFilter struct {
	Title           string
	Location        string
	JobType         models.JobType
	ExperienceLevel models.ExperienceLevel
	CompanyID       uint
	Limit           int
	Offset          int
}

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// Find returns active jobs only, newest publication first.
func (repo *Jobs) Find(ctx context.Context, filter JobFilter) ([]models.Job, error) {

	query := repo.db.WithContext(ctx).Preload("Company").Where("is_active = ?", true)

	if filter.Title != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\'", containsPattern(filter.Title))
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ? ESCAPE '\\'", containsPattern(filter.Location))
	}
	if filter.JobType != "" {
		query = query.Where("job_type = ?", filter.JobType)
	}
	if filter.ExperienceLevel != "" {
		query = query.Where("experience_level = ?", filter.ExperienceLevel)
	}
	if filter.CompanyID != 0 {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	jobs := make([]models.Job, 0)
	if err := query.Order("published_at DESC").Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := repo.db.WithContext(ctx).
		Preload("Company").
		Preload("Skills").
		Preload("Tags").
		First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// IncrementViews bumps the counter in a single statement so concurrent readers never lose an increment.
func (repo *Jobs) IncrementViews(ctx context.Context, id uint) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return res.RowsAffected == 1, res.Error
}

func (repo *Jobs) Add(ctx context.Context, job *models.Job) error {
	return repo.db.WithContext(ctx).Create(job).Error
}

func (repo *Jobs) Update(ctx context.Context, id uint, fields map[string]any) error {
	return repo.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(fields).Error
}

func (repo *Jobs) ReplaceSkills(ctx context.Context, job *models.Job, skills []models.Skill) error {
	return repo.db.WithContext(ctx).Model(job).Association("Skills").Replace(skills)
}

func (repo *Jobs) ReplaceTags(ctx context.Context, jobID uint, tags []string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.JobTag{}, "job_id = ?", jobID).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		rows := make([]models.JobTag, 0, len(tags))
		for _, tag := range tags {
			rows = append(rows, models.JobTag{JobID: jobID, Tag: tag})
		}
		return tx.Create(&rows).Error
	})
}

func (repo *Jobs) Remove(ctx context.Context, id uint) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job := models.Job{ID: id}
		if err := tx.Model(&job).Association("Skills").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&models.JobTag{}, "job_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SavedJob{}, "job_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Job{}, "id = ?", id).Error
	})
}

func (repo *Jobs) GetByEmployer(ctx context.Context, employerID uint) ([]models.Job, error) {
	jobs := make([]models.Job, 0)
	err := repo.db.WithContext(ctx).
		Where("created_by_employer_id = ?", employerID).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetByCompany includes inactive jobs.
func (repo *Jobs) GetByCompany(ctx context.Context, companyID uint) ([]models.Job, error) {
	jobs := make([]models.Job, 0)
	err := repo.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) GetIDsByCompany(ctx context.Context, companyID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := repo.db.WithContext(ctx).Model(&models.Job{}).
		Where("company_id = ?", companyID).
		Pluck("id", &ids).Error
	return ids, err
}

func (repo *Jobs) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&models.Job{}).
		Where("is_active = ? AND deadline IS NOT NULL AND deadline < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in a lower-cased column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

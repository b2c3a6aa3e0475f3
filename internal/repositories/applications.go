package repositories

import (
	"context"
	"errors"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Applications struct {
	db *gorm.DB
}

func NewApplicationsRepository(db *gorm.DB) *Applications {
	return &Applications{db: db}
}

func (repo *Applications) Add(ctx context.Context, application *models.JobApplication) error {
	return repo.db.WithContext(ctx).Create(application).Error
}

func (repo *Applications) GetByID(ctx context.Context, id uint) (*models.JobApplication, error) {
	var application models.JobApplication
	err := repo.db.WithContext(ctx).
		Preload("Job").
		Preload("Candidate.User").
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

func (repo *Applications) GetByIDs(ctx context.Context, ids []uint) ([]models.JobApplication, error) {
	applications := make([]models.JobApplication, 0, len(ids))
	if len(ids) == 0 {
		return applications, nil
	}
	err := repo.db.WithContext(ctx).
		Preload("Job").
		Preload("Candidate.User").
		Order("id").
		Find(&applications, "id IN ?", ids).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

// GetByJob has no pagination: an employer reviews every applicant of a posting at once.
func (repo *Applications) GetByJob(ctx context.Context, jobID uint) ([]models.JobApplication, error) {
	return repo.find(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("job_id = ?", jobID) })
}

func (repo *Applications) GetByJobs(ctx context.Context, jobIDs []uint) ([]models.JobApplication, error) {
	if len(jobIDs) == 0 {
		return make([]models.JobApplication, 0), nil
	}
	return repo.find(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("job_id IN ?", jobIDs) })
}

func (repo *Applications) GetSchedulable(ctx context.Context, jobIDs []uint) ([]models.JobApplication, error) {
	if len(jobIDs) == 0 {
		return make([]models.JobApplication, 0), nil
	}
	return repo.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("job_id IN ? AND status = ? AND interview_id IS NULL", jobIDs, models.StatusInterview)
	})
}

func (repo *Applications) GetByCandidate(ctx context.Context, candidateID uint) ([]models.JobApplication, error) {
	applications := make([]models.JobApplication, 0)
	err := repo.db.WithContext(ctx).
		Preload("Job.Company").
		Where("candidate_id = ?", candidateID).
		Order("applied_at DESC").Order("id DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (repo *Applications) Exists(ctx context.Context, jobID, candidateID uint) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Count(&count).Error
	return count > 0, err
}

func (repo *Applications) CountByJobs(ctx context.Context, jobIDs []uint) (int64, error) {
	var count int64
	if len(jobIDs) == 0 {
		return 0, nil
	}
	err := repo.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("job_id IN ?", jobIDs).
		Count(&count).Error
	return count, err
}

func (repo *Applications) CountByJob(ctx context.Context, jobID uint) (int64, error) {
	return repo.CountByJobs(ctx, []uint{jobID})
}

func (repo *Applications) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error {
	return repo.db.WithContext(ctx).Model(&models.JobApplication{}).Where("id = ?", id).
		Update("status", status).Error
}

// SetInterview links the application only if it is not linked yet.
func (repo *Applications) SetInterview(ctx context.Context, id uint, interviewID uint) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("id = ? AND interview_id IS NULL", id).
		Update("interview_id", interviewID)
	return res.RowsAffected == 1, res.Error
}

func (repo *Applications) AdvanceByInterview(ctx context.Context, interviewID uint,
	from, to models.ApplicationStatus) (int64, error) {

	res := repo.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("interview_id = ? AND status = ?", interviewID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// ReleaseInterview unlinks every application of a canceled interview so it can be scheduled again.
func (repo *Applications) ReleaseInterview(ctx context.Context, interviewID uint) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("interview_id = ?", interviewID).
		Update("interview_id", nil)
	return res.RowsAffected, res.Error
}

func (repo *Applications) Remove(ctx context.Context, id uint) error {
	return repo.db.WithContext(ctx).Delete(&models.JobApplication{}, "id = ?", id).Error
}

func (repo *Applications) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.JobApplication, error) {
	applications := make([]models.JobApplication, 0)
	err := repo.db.WithContext(ctx).
		Preload("Job").
		Preload("Candidate.User").
		Scopes(scope).
		Order("applied_at DESC").Order("id DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

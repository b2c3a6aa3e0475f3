package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Candidates struct {
	db *gorm.DB
}

func NewCandidatesRepository(db *gorm.DB) *Candidates {
	return &Candidates{db: db}
}

func (repo *Candidates) AddProfile(ctx context.Context, profile *models.CandidateProfile) error {
	return repo.db.WithContext(ctx).Create(profile).Error
}

func (repo *Candidates) GetProfileByUserID(ctx context.Context, userID string) (*models.CandidateProfile, error) {
	var profile models.CandidateProfile
	if err := repo.db.WithContext(ctx).Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (repo *Candidates) GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.CandidateProfile, error) {
	profiles := make([]models.CandidateProfile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := repo.db.WithContext(ctx).Preload("User").Find(&profiles, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *Candidates) SaveProfile(ctx context.Context, profile *models.CandidateProfile) error {
	return repo.db.WithContext(ctx).Omit("User").Save(profile).Error
}

func (repo *Candidates) GetExperiences(ctx context.Context, candidateID uint) ([]models.CandidateExperience, error) {
	experiences := make([]models.CandidateExperience, 0)
	err := repo.db.WithContext(ctx).Where("candidate_id = ?", candidateID).
		Order("start_date DESC").Find(&experiences).Error
	if err != nil {
		return nil, err
	}
	return experiences, nil
}

func (repo *Candidates) AddExperience(ctx context.Context, experience *models.CandidateExperience) error {
	return repo.db.WithContext(ctx).Create(experience).Error
}

func (repo *Candidates) UpdateExperience(ctx context.Context, experience *models.CandidateExperience) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.CandidateExperience{}).
		Where("id = ? AND candidate_id = ?", experience.ID, experience.CandidateID).
		Select("company_name", "position", "start_date", "end_date", "is_current", "description").
		Updates(experience)
	return res.RowsAffected > 0, res.Error
}

func (repo *Candidates) RemoveExperience(ctx context.Context, candidateID, id uint) (bool, error) {
	res := repo.db.WithContext(ctx).Delete(&models.CandidateExperience{}, "id = ? AND candidate_id = ?", id, candidateID)
	return res.RowsAffected > 0, res.Error
}

func (repo *Candidates) GetEducations(ctx context.Context, candidateID uint) ([]models.CandidateEducation, error) {
	educations := make([]models.CandidateEducation, 0)
	err := repo.db.WithContext(ctx).Where("candidate_id = ?", candidateID).
		Order("start_date DESC").Find(&educations).Error
	if err != nil {
		return nil, err
	}
	return educations, nil
}

func (repo *Candidates) AddEducation(ctx context.Context, education *models.CandidateEducation) error {
	return repo.db.WithContext(ctx).Create(education).Error
}

func (repo *Candidates) UpdateEducation(ctx context.Context, education *models.CandidateEducation) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.CandidateEducation{}).
		Where("id = ? AND candidate_id = ?", education.ID, education.CandidateID).
		Select("school", "degree", "field_of_study", "start_date", "end_date").
		Updates(education)
	return res.RowsAffected > 0, res.Error
}

func (repo *Candidates) RemoveEducation(ctx context.Context, candidateID, id uint) (bool, error) {
	res := repo.db.WithContext(ctx).Delete(&models.CandidateEducation{}, "id = ? AND candidate_id = ?", id, candidateID)
	return res.RowsAffected > 0, res.Error
}

func (repo *Candidates) GetSkills(ctx context.Context, candidateID uint) ([]models.CandidateSkill, error) {
	skills := make([]models.CandidateSkill, 0)
	err := repo.db.WithContext(ctx).Preload("Skill").
		Where("candidate_id = ?", candidateID).Order("id").Find(&skills).Error
	if err != nil {
		return nil, err
	}
	return skills, nil
}

func (repo *Candidates) HasSkill(ctx context.Context, candidateID, skillID uint) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.CandidateSkill{}).
		Where("candidate_id = ? AND skill_id = ?", candidateID, skillID).Count(&count).Error
	return count > 0, err
}

func (repo *Candidates) AddSkill(ctx context.Context, skill *models.CandidateSkill) error {
	return repo.db.WithContext(ctx).Omit("Skill").Create(skill).Error
}

func (repo *Candidates) RemoveSkill(ctx context.Context, candidateID, skillID uint) (bool, error) {
	res := repo.db.WithContext(ctx).Delete(&models.CandidateSkill{}, "candidate_id = ? AND skill_id = ?", candidateID, skillID)
	return res.RowsAffected > 0, res.Error
}

func (repo *Candidates) SaveJob(ctx context.Context, candidateID, jobID uint) error {
	return repo.db.WithContext(ctx).Create(&models.SavedJob{
		CandidateID: candidateID,
		JobID:       jobID,
		SavedAt:     time.Now().UTC(),
	}).Error
}

func (repo *Candidates) UnsaveJob(ctx context.Context, candidateID, jobID uint) (bool, error) {
	res := repo.db.WithContext(ctx).Delete(&models.SavedJob{}, "candidate_id = ? AND job_id = ?", candidateID, jobID)
	return res.RowsAffected > 0, res.Error
}

func (repo *Candidates) IsJobSaved(ctx context.Context, candidateID, jobID uint) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.SavedJob{}).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).Count(&count).Error
	return count > 0, err
}

func (repo *Candidates) GetSavedJobs(ctx context.Context, candidateID uint) ([]models.SavedJob, error) {
	saved := make([]models.SavedJob, 0)
	err := repo.db.WithContext(ctx).Preload("Job.Company").
		Where("candidate_id = ?", candidateID).
		Order("saved_at DESC").Order("id DESC").
		Find(&saved).Error
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetFollowersOfCompany returns user ids of candidates who saved at least one job of the company.
func (repo *Candidates) GetFollowersOfCompany(ctx context.Context, companyID uint) ([]string, error) {
	userIDs := make([]string, 0)
	err := repo.db.WithContext(ctx).Model(&models.CandidateProfile{}).
		Distinct("candidate_profiles.user_id").
		Joins("JOIN saved_jobs ON saved_jobs.candidate_id = candidate_profiles.id").
		Joins("JOIN jobs ON jobs.id = saved_jobs.job_id").
		Where("jobs.company_id = ?", companyID).
		Pluck("candidate_profiles.user_id", &userIDs).Error
	return userIDs, err
}

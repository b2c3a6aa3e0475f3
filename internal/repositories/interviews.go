package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/gorm"
)

type Interviews struct {
	db *gorm.DB
}

func NewInterviewsRepository(db *gorm.DB) *Interviews {
	return &Interviews{db: db}
}

func (repo *Interviews) Create(ctx context.Context, interview *models.Interview) error {
	return repo.db.WithContext(ctx).Omit("Participants", "Job").Create(interview).Error
}

func (repo *Interviews) CreateParticipant(ctx context.Context, participant *models.InterviewParticipant) error {
	return repo.db.WithContext(ctx).Omit("Interview", "Candidate").Create(participant).Error
}

func (repo *Interviews) GetByID(ctx context.Context, id uint) (*models.Interview, error) {
	var interview models.Interview
	err := repo.withDetails(repo.db.WithContext(ctx)).First(&interview, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &interview, nil
}

// ListByCompany returns interviews of the company in start order; an empty status means any.
func (repo *Interviews) ListByCompany(ctx context.Context, companyID uint, status models.InterviewStatus) ([]models.Interview, error) {
	query := repo.withDetails(repo.db.WithContext(ctx)).Where("company_id = ?", companyID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	interviews := make([]models.Interview, 0)
	if err := query.Order("start_time ASC").Order("id ASC").Find(&interviews).Error; err != nil {
		return nil, err
	}
	return interviews, nil
}

func (repo *Interviews) ListByCandidate(ctx context.Context, candidateID uint) ([]models.Interview, error) {
	interviews := make([]models.Interview, 0)
	err := repo.withDetails(repo.db.WithContext(ctx)).
		Where("id IN (?)", repo.db.Model(&models.InterviewParticipant{}).
			Select("interview_id").Where("candidate_id = ?", candidateID)).
		Order("start_time ASC").Order("id ASC").
		Find(&interviews).Error
	if err != nil {
		return nil, err
	}
	return interviews, nil
}

// ListOverdue returns open interviews which ended before the given moment.
func (repo *Interviews) ListOverdue(ctx context.Context, before time.Time) ([]models.Interview, error) {
	interviews := make([]models.Interview, 0)
	err := repo.db.WithContext(ctx).Preload("Participants").
		Where("status IN ?", []models.InterviewStatus{models.InterviewScheduled, models.InterviewRescheduled}).
		Where("end_time < ?", before).
		Order("id").Find(&interviews).Error
	if err != nil {
		return nil, err
	}
	return interviews, nil
}

func (repo *Interviews) Update(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.Interview{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (repo *Interviews) GetParticipant(ctx context.Context, interviewID, candidateID uint) (*models.InterviewParticipant, error) {
	var participant models.InterviewParticipant
	err := repo.db.WithContext(ctx).Preload("Interview").Preload("Candidate.User").
		First(&participant, "interview_id = ? AND candidate_id = ?", interviewID, candidateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

func (repo *Interviews) UpdateParticipantStatus(ctx context.Context, participantID uint, status models.ParticipantStatus) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&models.InterviewParticipant{}).
		Where("id = ?", participantID).
		Update("participant_status", status)
	return res.RowsAffected > 0, res.Error
}

// ResetParticipants puts every participant of the interview back into invited.
func (repo *Interviews) ResetParticipants(ctx context.Context, interviewID uint) error {
	return repo.db.WithContext(ctx).Model(&models.InterviewParticipant{}).
		Where("interview_id = ?", interviewID).
		Update("participant_status", models.ParticipantInvited).Error
}

func (repo *Interviews) withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Job").
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Participants.Candidate.User")
}

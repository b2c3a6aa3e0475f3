package services

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/metrics"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const maxJobsPageSize = 100

type jobRepository interface {
	Find(ctx context.Context, filter repositories.JobFilter) ([]models.Job, error)
	GetByID(ctx context.Context, id uint) (*models.Job, error)
	IncrementViews(ctx context.Context, id uint) (bool, error)
	Add(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Remove(ctx context.Context, id uint) error
}

type jobApplicationRepository interface {
	GetByJob(ctx context.Context, jobID uint) ([]models.JobApplication, error)
	CountByJob(ctx context.Context, jobID uint) (int64, error)
}

type skillLookup interface {
	GetByIDs(ctx context.Context, ids []uint) ([]models.Skill, error)
}

type JobInput struct {
	Title           string                 `json:"title" validate:"required,max=200"`
	Description     string                 `json:"description"`
	Requirements    string                 `json:"requirements"`
	Location        string                 `json:"location" validate:"max=200"`
	JobType         models.JobType         `json:"job_type" validate:"required,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel models.ExperienceLevel `json:"experience_level" validate:"required,oneof=entry junior middle senior lead"`
	SalaryMin       *int64                 `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax       *int64                 `json:"salary_max" validate:"omitempty,gte=0"`
	SalaryCurrency  string                 `json:"salary_currency" validate:"omitempty,len=3"`
	Deadline        *time.Time             `json:"deadline"`
	IsActive        *bool                  `json:"is_active"`
	SkillIDs        []uint                 `json:"skill_ids"`
	Tags            []string               `json:"tags" validate:"dive,required,max=50"`
}

type UpdateJobInput struct {
	Title           *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string                 `json:"description"`
	Requirements    *string                 `json:"requirements"`
	Location        *string                 `json:"location" validate:"omitempty,max=200"`
	JobType         *models.JobType         `json:"job_type" validate:"omitempty,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel *models.ExperienceLevel `json:"experience_level" validate:"omitempty,oneof=entry junior middle senior lead"`
	SalaryMin       *int64                  `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax       *int64                  `json:"salary_max" validate:"omitempty,gte=0"`
	SalaryCurrency  *string                 `json:"salary_currency" validate:"omitempty,len=3"`
	Deadline        *time.Time              `json:"deadline"`
	SkillIDs        *[]uint                 `json:"skill_ids"`
	Tags            *[]string               `json:"tags"`
}

type JobService struct {
	uow          unitOfWork
	jobs         jobRepository
	employers    employerLookup
	applications jobApplicationRepository
	skills       skillLookup
	bus          EventBus.Bus
	now          func() time.Time
}

func NewJobService(uow unitOfWork, jobs jobRepository, employers employerLookup, applications jobApplicationRepository,
	skills skillLookup, bus EventBus.Bus) *JobService {

	return &JobService{
		uow:          uow,
		jobs:         jobs,
		employers:    employers,
		applications: applications,
		skills:       skills,
		bus:          bus,
		now:          time.Now,
	}
}

func (s *JobService) GetJobs(ctx context.Context, filter repositories.JobFilter) ([]models.Job, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, invalid("limit and offset must not be negative")
	}
	if filter.Limit > maxJobsPageSize {
		filter.Limit = maxJobsPageSize
	}

	jobs, err := s.jobs.Find(ctx, filter)
	if err != nil {
		return nil, dbError(err, "failed to get jobs")
	}
	return jobs, nil
}

// GetJobByID counts a view and returns the job with the counter already incremented.
func (s *JobService) GetJobByID(ctx context.Context, id uint) (*models.Job, error) {
	found, err := s.jobs.IncrementViews(ctx, id)
	if err != nil {
		return nil, dbError(err, "failed to increment job views")
	}
	if !found {
		return nil, notFound("job")
	}
	metrics.JobViews.Inc()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "failed to get job")
	}
	if job == nil {
		return nil, notFound("job")
	}
	return job, nil
}

func (s *JobService) CreateJob(ctx context.Context, userID string, input JobInput) (*models.Job, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkSalaryRange(input.SalaryMin, input.SalaryMax); err != nil {
		return nil, err
	}

	skills, err := s.resolveSkills(ctx, input.SkillIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := &models.Job{
		CompanyID:           employer.CompanyID,
		CreatedByEmployerID: employer.ID,
		Title:               strings.TrimSpace(input.Title),
		Description:         input.Description,
		Requirements:        input.Requirements,
		Location:            strings.TrimSpace(input.Location),
		JobType:             input.JobType,
		ExperienceLevel:     input.ExperienceLevel,
		SalaryMin:           input.SalaryMin,
		SalaryMax:           input.SalaryMax,
		SalaryCurrency:      strings.ToUpper(input.SalaryCurrency),
		IsActive:            input.IsActive == nil || *input.IsActive,
		Deadline:            input.Deadline,
		PublishedAt:         now,
		Skills:              skills,
		Tags: lo.Map(normalizeTags(input.Tags), func(tag string, _ int) models.JobTag {
			return models.JobTag{Tag: tag}
		}),
	}

	if err := s.jobs.Add(ctx, job); err != nil {
		return nil, dbError(err, "failed to create job")
	}
	log.Infof("job %d created by employer %d", job.ID, employer.ID)

	s.bus.Publish(events.JobCreatedTopic, events.JobCreated{
		JobID:     job.ID,
		CompanyID: job.CompanyID,
		Title:     job.Title,
	})

	return s.reload(ctx, job.ID)
}

func (s *JobService) UpdateJob(ctx context.Context, userID string, id uint, input UpdateJobInput) (*models.Job, error) {
	job, err := s.ownedJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	salaryMin, salaryMax := job.SalaryMin, job.SalaryMax
	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Requirements != nil {
		fields["requirements"] = *input.Requirements
	}
	if input.Location != nil {
		fields["location"] = strings.TrimSpace(*input.Location)
	}
	if input.JobType != nil {
		fields["job_type"] = *input.JobType
	}
	if input.ExperienceLevel != nil {
		fields["experience_level"] = *input.ExperienceLevel
	}
	if input.SalaryMin != nil {
		fields["salary_min"] = *input.SalaryMin
		salaryMin = input.SalaryMin
	}
	if input.SalaryMax != nil {
		fields["salary_max"] = *input.SalaryMax
		salaryMax = input.SalaryMax
	}
	if input.SalaryCurrency != nil {
		fields["salary_currency"] = strings.ToUpper(*input.SalaryCurrency)
	}
	if input.Deadline != nil {
		fields["deadline"] = *input.Deadline
	}

	if err := checkSalaryRange(salaryMin, salaryMax); err != nil {
		return nil, err
	}

	var skills []models.Skill
	if input.SkillIDs != nil {
		if skills, err = s.resolveSkills(ctx, *input.SkillIDs); err != nil {
			return nil, err
		}
	}

	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if input.SkillIDs != nil {
			if err := repos.Jobs.ReplaceSkills(ctx, job, skills); err != nil {
				return dbError(err, "failed to update job skills")
			}
		}
		if input.Tags != nil {
			if err := repos.Jobs.ReplaceTags(ctx, job.ID, normalizeTags(*input.Tags)); err != nil {
				return dbError(err, "failed to update job tags")
			}
		}
		if len(fields) > 0 {
			if err := repos.Jobs.Update(ctx, job.ID, fields); err != nil {
				return dbError(err, "failed to update job")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, job.ID)
}

func (s *JobService) ToggleActive(ctx context.Context, userID string, id uint, active bool) (*models.Job, error) {
	job, err := s.ownedJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.jobs.Update(ctx, job.ID, map[string]any{"is_active": active}); err != nil {
		return nil, dbError(err, "failed to update job")
	}
	return s.reload(ctx, job.ID)
}

// DeleteJob refuses jobs that already have applicants; those are deactivated instead.
func (s *JobService) DeleteJob(ctx context.Context, userID string, id uint) error {
	job, err := s.ownedJob(ctx, userID, id)
	if err != nil {
		return err
	}

	count, err := s.applications.CountByJob(ctx, job.ID)
	if err != nil {
		return dbError(err, "failed to count applications")
	}
	if count > 0 {
		return errors.Wrapf(ErrConflict, "job has %d applications, deactivate it instead", count)
	}

	if err := s.jobs.Remove(ctx, job.ID); err != nil {
		return dbError(err, "failed to delete job")
	}
	log.Infof("job %d deleted", job.ID)
	return nil
}

func (s *JobService) GetApplications(ctx context.Context, userID string, jobID uint) ([]models.JobApplication, error) {
	job, err := s.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	applications, err := s.applications.GetByJob(ctx, job.ID)
	if err != nil {
		return nil, dbError(err, "failed to get applications")
	}
	return applications, nil
}

func (s *JobService) ownedJob(ctx context.Context, userID string, id uint) (*models.Job, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "failed to get job")
	}
	if job == nil {
		return nil, notFound("job")
	}
	if job.CompanyID != employer.CompanyID {
		return nil, errors.Wrap(ErrForbidden, "job belongs to another company")
	}
	return job, nil
}

func (s *JobService) reload(ctx context.Context, id uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "failed to get job")
	}
	if job == nil {
		return nil, notFound("job")
	}
	return job, nil
}

func (s *JobService) resolveSkills(ctx context.Context, ids []uint) ([]models.Skill, error) {
	ids = lo.Uniq(ids)
	skills, err := s.skills.GetByIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err, "failed to get skills")
	}
	if len(skills) != len(ids) {
		missing, _ := lo.Difference(ids, lo.Map(skills, func(skill models.Skill, _ int) uint { return skill.ID }))
		return nil, invalid("unknown skills %v", missing)
	}
	return skills, nil
}

func checkSalaryRange(min, max *int64) error {
	if min != nil && max != nil && *min > *max {
		return invalid("salary_min must not exceed salary_max")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	return lo.Uniq(lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		return tag, tag != ""
	}))
}

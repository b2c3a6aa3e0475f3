package services

import (
	"context"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type employerRepository interface {
	employerLookup
	Add(ctx context.Context, employer *models.Employer) error
	Update(ctx context.Context, id uint, fields map[string]any) error
}

type employerJobRepository interface {
	GetByEmployer(ctx context.Context, employerID uint) ([]models.Job, error)
	GetByCompany(ctx context.Context, companyID uint) ([]models.Job, error)
	GetIDsByCompany(ctx context.Context, companyID uint) ([]uint, error)
}

type employerApplicationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.JobApplication, error)
	GetByJobs(ctx context.Context, jobIDs []uint) ([]models.JobApplication, error)
	CountByJobs(ctx context.Context, jobIDs []uint) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error
}

type companyLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Company, error)
}

type EmployerProfileInput struct {
	CompanyID uint   `json:"company_id" validate:"required"`
	Position  string `json:"position" validate:"max=200"`
}

// CandidateFilter narrows an employer's candidate list. Status "all" or empty keeps every status.
type CandidateFilter struct {
	Status string
	Query  string
}

const statusAll = "all"

type EmployerService struct {
	employers    employerRepository
	profiles     profileRepository
	companies    companyLookup
	jobs         employerJobRepository
	applications employerApplicationRepository
	bus          EventBus.Bus
}

func NewEmployerService(employers employerRepository, profiles profileRepository, companies companyLookup,
	jobs employerJobRepository, applications employerApplicationRepository, bus EventBus.Bus) *EmployerService {

	return &EmployerService{
		employers:    employers,
		profiles:     profiles,
		companies:    companies,
		jobs:         jobs,
		applications: applications,
		bus:          bus,
	}
}

// GetEmployerProfile returns nil when the user has no employer profile or it cannot be loaded.
func (s *EmployerService) GetEmployerProfile(ctx context.Context, userID string) *models.Employer {
	employer, err := s.employers.GetByUserID(ctx, userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to get employer profile: %v", err)
		return nil
	}
	return employer
}

func (s *EmployerService) CreateEmployerProfile(ctx context.Context, userID string, input EmployerProfileInput) (*models.Employer, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get profile")
	}
	if profile == nil {
		return nil, notFound("profile")
	}
	if profile.Role != models.RoleEmployer {
		return nil, errors.Wrap(ErrForbidden, "only employers can create an employer profile")
	}

	existing, err := s.employers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get employer")
	}
	if existing != nil {
		return nil, errors.Wrap(ErrConflict, "employer profile already exists")
	}

	company, err := s.companies.GetByID(ctx, input.CompanyID)
	if err != nil {
		return nil, dbError(err, "failed to get company")
	}
	if company == nil {
		return nil, notFound("company")
	}

	employer := &models.Employer{
		UserID:    userID,
		CompanyID: company.ID,
		Position:  strings.TrimSpace(input.Position),
	}
	if err := s.employers.Add(ctx, employer); err != nil {
		return nil, dbError(err, "failed to create employer profile")
	}

	return s.employers.GetByUserID(ctx, userID)
}

func (s *EmployerService) UpdatePosition(ctx context.Context, userID string, position string) (*models.Employer, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}
	if err := s.employers.Update(ctx, employer.ID, map[string]any{"position": strings.TrimSpace(position)}); err != nil {
		return nil, dbError(err, "failed to update employer")
	}
	return s.employers.GetByUserID(ctx, userID)
}

// GetEmployerJobs lists every job of the employer's company, inactive ones included.
func (s *EmployerService) GetEmployerJobs(ctx context.Context, userID string) ([]models.Job, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.GetByCompany(ctx, employer.CompanyID)
	if err != nil {
		return nil, dbError(err, "failed to get employer jobs")
	}
	return jobs, nil
}

// GetJobStats aggregates the jobs the employer created: one query for jobs, one count for their applications.
func (s *EmployerService) GetJobStats(ctx context.Context, userID string) (*models.JobStats, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.GetByEmployer(ctx, employer.ID)
	if err != nil {
		return nil, dbError(err, "failed to get employer jobs")
	}

	applied, err := s.applications.CountByJobs(ctx, lo.Map(jobs, func(job models.Job, _ int) uint { return job.ID }))
	if err != nil {
		return nil, dbError(err, "failed to count applications")
	}

	return &models.JobStats{
		Total:        int64(len(jobs)),
		Active:       int64(lo.CountBy(jobs, func(job models.Job) bool { return job.IsActive })),
		TotalApplied: applied,
		TotalViews:   lo.SumBy(jobs, func(job models.Job) int64 { return job.ViewCount }),
	}, nil
}

func (s *EmployerService) GetCandidates(ctx context.Context, userID string, filter CandidateFilter) ([]models.CandidateRow, error) {
	status := strings.TrimSpace(filter.Status)
	if status != "" && status != statusAll && !lo.Contains(models.ApplicationStatuses, models.ApplicationStatus(status)) {
		return nil, invalid("unknown application status %q", status)
	}

	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	jobIDs, err := s.jobs.GetIDsByCompany(ctx, employer.CompanyID)
	if err != nil {
		return nil, dbError(err, "failed to get company jobs")
	}

	applications, err := s.applications.GetByJobs(ctx, jobIDs)
	if err != nil {
		return nil, dbError(err, "failed to get applications")
	}

	return FilterCandidates(lo.Map(applications, toCandidateRow), status, filter.Query), nil
}

// FilterCandidates keeps rows with the given status whose name, position or email contains query, ignoring case.
func FilterCandidates(rows []models.CandidateRow, status string, query string) []models.CandidateRow {
	query = strings.ToLower(strings.TrimSpace(query))
	return lo.Filter(rows, func(row models.CandidateRow, _ int) bool {
		if status != "" && status != statusAll && string(row.Status) != status {
			return false
		}
		if query == "" {
			return true
		}
		return strings.Contains(strings.ToLower(row.Name), query) ||
			strings.Contains(strings.ToLower(row.Position), query) ||
			strings.Contains(strings.ToLower(row.Email), query)
	})
}

func toCandidateRow(application models.JobApplication, _ int) models.CandidateRow {
	row := models.CandidateRow{
		ApplicationID: application.ID,
		CandidateID:   application.CandidateID,
		JobID:         application.JobID,
		Status:        application.Status,
		AppliedAt:     application.AppliedAt,
		InterviewID:   application.InterviewID,
	}
	if application.Job != nil {
		row.Position = application.Job.Title
	}
	if application.Candidate != nil && application.Candidate.User != nil {
		user := application.Candidate.User
		row.Name = user.FullName
		row.Email = user.Email
		row.Phone = user.Phone
		row.AvatarURL = user.AvatarURL
	}
	return row
}

func (s *EmployerService) UpdateApplicationStatus(ctx context.Context, userID string, applicationID uint,
	status models.ApplicationStatus) (*models.JobApplication, error) {

	if !lo.Contains(models.ApplicationStatuses, status) {
		return nil, invalid("unknown application status %q", status)
	}

	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, dbError(err, "failed to get application")
	}
	if application == nil {
		return nil, notFound("application")
	}
	if application.Job == nil || application.Job.CompanyID != employer.CompanyID {
		return nil, errors.Wrap(ErrForbidden, "application belongs to another company")
	}

	oldStatus := application.Status
	if oldStatus == status {
		return application, nil
	}

	if err := s.applications.UpdateStatus(ctx, application.ID, status); err != nil {
		return nil, dbError(err, "failed to update application status")
	}
	application.Status = status
	log.Infof("application %d moved from %s to %s", application.ID, oldStatus, status)

	if application.Candidate != nil {
		s.bus.Publish(events.ApplicationStatusChangedTopic, events.ApplicationStatusChanged{
			ApplicationID:   application.ID,
			CandidateUserID: application.Candidate.UserID,
			JobTitle:        application.Job.Title,
			OldStatus:       oldStatus,
			NewStatus:       status,
		})
	}
	return application, nil
}

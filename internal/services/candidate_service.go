package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type candidateRepository interface {
	candidateLookup
	SaveProfile(ctx context.Context, profile *models.CandidateProfile) error

	GetExperiences(ctx context.Context, candidateID uint) ([]models.CandidateExperience, error)
	AddExperience(ctx context.Context, experience *models.CandidateExperience) error
	UpdateExperience(ctx context.Context, experience *models.CandidateExperience) (bool, error)
	RemoveExperience(ctx context.Context, candidateID, id uint) (bool, error)

	GetEducations(ctx context.Context, candidateID uint) ([]models.CandidateEducation, error)
	AddEducation(ctx context.Context, education *models.CandidateEducation) error
	UpdateEducation(ctx context.Context, education *models.CandidateEducation) (bool, error)
	RemoveEducation(ctx context.Context, candidateID, id uint) (bool, error)

	GetSkills(ctx context.Context, candidateID uint) ([]models.CandidateSkill, error)
	HasSkill(ctx context.Context, candidateID, skillID uint) (bool, error)
	AddSkill(ctx context.Context, skill *models.CandidateSkill) error
	RemoveSkill(ctx context.Context, candidateID, skillID uint) (bool, error)

	SaveJob(ctx context.Context, candidateID, jobID uint) error
	UnsaveJob(ctx context.Context, candidateID, jobID uint) (bool, error)
	IsJobSaved(ctx context.Context, candidateID, jobID uint) (bool, error)
	GetSavedJobs(ctx context.Context, candidateID uint) ([]models.SavedJob, error)
}

type candidateApplicationRepository interface {
	Add(ctx context.Context, application *models.JobApplication) error
	GetByID(ctx context.Context, id uint) (*models.JobApplication, error)
	GetByCandidate(ctx context.Context, candidateID uint) ([]models.JobApplication, error)
	Exists(ctx context.Context, jobID, candidateID uint) (bool, error)
	Remove(ctx context.Context, id uint) error
}

type jobLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Job, error)
}

type interviewLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Interview, error)
}

type skillByIDLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Skill, error)
}

type CandidateProfileInput struct {
	Headline           string         `json:"headline" validate:"max=200"`
	Summary            string         `json:"summary"`
	YearsOfExperience  int            `json:"years_of_experience" validate:"gte=0,lte=80"`
	DesiredPosition    string         `json:"desired_position" validate:"max=200"`
	DesiredJobType     models.JobType `json:"desired_job_type" validate:"omitempty,oneof=full_time part_time contract internship freelance"`
	DesiredSalaryMin   *int64         `json:"desired_salary_min" validate:"omitempty,gte=0"`
	DesiredSalaryMax   *int64         `json:"desired_salary_max" validate:"omitempty,gte=0"`
	PreferredLocations []string       `json:"preferred_locations" validate:"dive,required,max=200"`
	ResumeURL          string         `json:"resume_url" validate:"omitempty,url"`
}

type ExperienceInput struct {
	CompanyName string     `json:"company_name" validate:"required,max=200"`
	Position    string     `json:"position" validate:"required,max=200"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `json:"is_current"`
	Description string     `json:"description"`
}

type EducationInput struct {
	School       string     `json:"school" validate:"required,max=200"`
	Degree       string     `json:"degree" validate:"max=200"`
	FieldOfStudy string     `json:"field_of_study" validate:"max=200"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

type CandidateSkillInput struct {
	SkillID uint   `json:"skill_id" validate:"required"`
	Level   string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
}

type ApplyInput struct {
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
	ResumeURL   string `json:"resume_url" validate:"omitempty,url"`
}

type CandidateService struct {
	candidates   candidateRepository
	profiles     profileRepository
	jobs         jobLookup
	applications candidateApplicationRepository
	interviews   interviewLookup
	skills       skillByIDLookup
	media        MediaUploader
	bus          EventBus.Bus
	now          func() time.Time
}

// NewCandidateService accepts a nil media uploader; avatar uploads then fail with ErrMediaUnavailable.
func NewCandidateService(candidates candidateRepository, profiles profileRepository, jobs jobLookup,
	applications candidateApplicationRepository, interviews interviewLookup, skills skillByIDLookup,
	media MediaUploader, bus EventBus.Bus) *CandidateService {

	return &CandidateService{
		candidates:   candidates,
		profiles:     profiles,
		jobs:         jobs,
		applications: applications,
		interviews:   interviews,
		skills:       skills,
		media:        media,
		bus:          bus,
		now:          time.Now,
	}
}

func (s *CandidateService) GetCandidateProfile(ctx context.Context, userID string) (*models.CandidateProfile, error) {
	return candidateOf(ctx, s.candidates, userID)
}

func (s *CandidateService) UpsertCandidateProfile(ctx context.Context, userID string, input CandidateProfileInput) (*models.CandidateProfile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkSalaryRange(input.DesiredSalaryMin, input.DesiredSalaryMax); err != nil {
		return nil, err
	}

	profile, err := s.candidates.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get candidate profile")
	}
	if profile == nil {
		owner, err := s.profiles.GetByID(ctx, userID)
		if err != nil {
			return nil, dbError(err, "failed to get profile")
		}
		if owner == nil || owner.Role != models.RoleCandidate {
			return nil, errors.Wrap(ErrForbidden, "only candidates have a candidate profile")
		}
		profile = &models.CandidateProfile{UserID: userID}
	}

	profile.Headline = strings.TrimSpace(input.Headline)
	profile.Summary = input.Summary
	profile.YearsOfExperience = input.YearsOfExperience
	profile.DesiredPosition = strings.TrimSpace(input.DesiredPosition)
	profile.DesiredJobType = input.DesiredJobType
	profile.DesiredSalaryMin = input.DesiredSalaryMin
	profile.DesiredSalaryMax = input.DesiredSalaryMax
	profile.PreferredLocations = lo.Uniq(lo.Map(input.PreferredLocations, func(l string, _ int) string {
		return strings.TrimSpace(l)
	}))
	profile.ResumeURL = input.ResumeURL

	if err := s.candidates.SaveProfile(ctx, profile); err != nil {
		return nil, dbError(err, "failed to save candidate profile")
	}
	return s.candidates.GetProfileByUserID(ctx, userID)
}

func (s *CandidateService) UploadAvatar(ctx context.Context, userID string, filename string, file io.Reader) (*models.Profile, error) {
	if s.media == nil {
		return nil, ErrMediaUnavailable
	}

	url, err := s.media.Upload(ctx, filename, file)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeMediaApi).Errorf("failed to upload avatar: %v", err)
		return nil, errors.Wrap(err, "failed to upload avatar")
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{"avatar_url": url}); err != nil {
		return nil, dbError(err, "failed to update avatar")
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get profile")
	}
	if profile == nil {
		return nil, notFound("profile")
	}
	return profile, nil
}

func (s *CandidateService) GetExperiences(ctx context.Context, userID string) ([]models.CandidateExperience, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	experiences, err := s.candidates.GetExperiences(ctx, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to get experiences")
	}
	return experiences, nil
}

func (s *CandidateService) AddExperience(ctx context.Context, userID string, input ExperienceInput) (*models.CandidateExperience, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	experience, err := newExperience(input)
	if err != nil {
		return nil, err
	}
	experience.CandidateID = candidate.ID

	if err := s.candidates.AddExperience(ctx, experience); err != nil {
		return nil, dbError(err, "failed to add experience")
	}
	return experience, nil
}

func (s *CandidateService) UpdateExperience(ctx context.Context, userID string, id uint, input ExperienceInput) (*models.CandidateExperience, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	experience, err := newExperience(input)
	if err != nil {
		return nil, err
	}
	experience.ID = id
	experience.CandidateID = candidate.ID

	updated, err := s.candidates.UpdateExperience(ctx, experience)
	if err != nil {
		return nil, dbError(err, "failed to update experience")
	}
	if !updated {
		return nil, notFound("experience")
	}
	return experience, nil
}

func (s *CandidateService) DeleteExperience(ctx context.Context, userID string, id uint) error {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return err
	}
	removed, err := s.candidates.RemoveExperience(ctx, candidate.ID, id)
	if err != nil {
		return dbError(err, "failed to delete experience")
	}
	if !removed {
		return notFound("experience")
	}
	return nil
}

func newExperience(input ExperienceInput) (*models.CandidateExperience, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.IsCurrent {
		input.EndDate = nil
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, invalid("end_date must not be before start_date")
	}
	return &models.CandidateExperience{
		CompanyName: strings.TrimSpace(input.CompanyName),
		Position:    strings.TrimSpace(input.Position),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsCurrent:   input.IsCurrent,
		Description: input.Description,
	}, nil
}

func (s *CandidateService) GetEducations(ctx context.Context, userID string) ([]models.CandidateEducation, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	educations, err := s.candidates.GetEducations(ctx, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to get educations")
	}
	return educations, nil
}

func (s *CandidateService) AddEducation(ctx context.Context, userID string, input EducationInput) (*models.CandidateEducation, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	education, err := newEducation(input)
	if err != nil {
		return nil, err
	}
	education.CandidateID = candidate.ID

	if err := s.candidates.AddEducation(ctx, education); err != nil {
		return nil, dbError(err, "failed to add education")
	}
	return education, nil
}

func (s *CandidateService) UpdateEducation(ctx context.Context, userID string, id uint, input EducationInput) (*models.CandidateEducation, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	education, err := newEducation(input)
	if err != nil {
		return nil, err
	}
	education.ID = id
	education.CandidateID = candidate.ID

	updated, err := s.candidates.UpdateEducation(ctx, education)
	if err != nil {
		return nil, dbError(err, "failed to update education")
	}
	if !updated {
		return nil, notFound("education")
	}
	return education, nil
}

func (s *CandidateService) DeleteEducation(ctx context.Context, userID string, id uint) error {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return err
	}
	removed, err := s.candidates.RemoveEducation(ctx, candidate.ID, id)
	if err != nil {
		return dbError(err, "failed to delete education")
	}
	if !removed {
		return notFound("education")
	}
	return nil
}

func newEducation(input EducationInput) (*models.CandidateEducation, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, invalid("end_date must not be before start_date")
	}
	return &models.CandidateEducation{
		School:       strings.TrimSpace(input.School),
		Degree:       strings.TrimSpace(input.Degree),
		FieldOfStudy: strings.TrimSpace(input.FieldOfStudy),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	}, nil
}

func (s *CandidateService) GetCandidateSkills(ctx context.Context, userID string) ([]models.CandidateSkill, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	skills, err := s.candidates.GetSkills(ctx, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to get candidate skills")
	}
	return skills, nil
}

func (s *CandidateService) AddCandidateSkill(ctx context.Context, userID string, input CandidateSkillInput) (*models.CandidateSkill, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}

	skill, err := s.skills.GetByID(ctx, input.SkillID)
	if err != nil {
		return nil, dbError(err, "failed to get skill")
	}
	if skill == nil {
		return nil, notFound("skill")
	}

	exists, err := s.candidates.HasSkill(ctx, candidate.ID, skill.ID)
	if err != nil {
		return nil, dbError(err, "failed to check candidate skill")
	}
	if exists {
		return nil, errors.Wrapf(ErrConflict, "skill %q is already added", skill.Name)
	}

	candidateSkill := &models.CandidateSkill{CandidateID: candidate.ID, SkillID: skill.ID, Level: input.Level}
	if err := s.candidates.AddSkill(ctx, candidateSkill); err != nil {
		return nil, dbError(err, "failed to add candidate skill")
	}
	candidateSkill.Skill = skill
	return candidateSkill, nil
}

func (s *CandidateService) RemoveCandidateSkill(ctx context.Context, userID string, skillID uint) error {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return err
	}
	removed, err := s.candidates.RemoveSkill(ctx, candidate.ID, skillID)
	if err != nil {
		return dbError(err, "failed to remove candidate skill")
	}
	if !removed {
		return notFound("candidate skill")
	}
	return nil
}

// SaveJob is idempotent: saving an already saved job succeeds.
func (s *CandidateService) SaveJob(ctx context.Context, userID string, jobID uint) error {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return dbError(err, "failed to get job")
	}
	if job == nil {
		return notFound("job")
	}

	saved, err := s.candidates.IsJobSaved(ctx, candidate.ID, jobID)
	if err != nil {
		return dbError(err, "failed to check saved job")
	}
	if saved {
		return nil
	}

	if err := s.candidates.SaveJob(ctx, candidate.ID, jobID); err != nil {
		return dbError(err, "failed to save job")
	}
	return nil
}

func (s *CandidateService) UnsaveJob(ctx context.Context, userID string, jobID uint) error {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return err
	}
	if _, err := s.candidates.UnsaveJob(ctx, candidate.ID, jobID); err != nil {
		return dbError(err, "failed to unsave job")
	}
	return nil
}

func (s *CandidateService) IsJobSaved(ctx context.Context, userID string, jobID uint) (bool, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return false, err
	}
	saved, err := s.candidates.IsJobSaved(ctx, candidate.ID, jobID)
	if err != nil {
		return false, dbError(err, "failed to check saved job")
	}
	return saved, nil
}

func (s *CandidateService) GetSavedJobs(ctx context.Context, userID string) ([]models.SavedJob, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.candidates.GetSavedJobs(ctx, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to get saved jobs")
	}
	return saved, nil
}

func (s *CandidateService) ApplyToJob(ctx context.Context, userID string, jobID uint, input ApplyInput) (*models.JobApplication, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, dbError(err, "failed to get job")
	}
	if job == nil {
		return nil, notFound("job")
	}
	if !job.AcceptsApplications(s.now()) {
		return nil, invalid("job %d is not accepting applications", job.ID)
	}

	exists, err := s.applications.Exists(ctx, job.ID, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to check application")
	}
	if exists {
		return nil, errors.Wrap(ErrConflict, "already applied to this job")
	}

	resumeURL := input.ResumeURL
	if resumeURL == "" {
		resumeURL = candidate.ResumeURL
	}

	application := &models.JobApplication{
		JobID:       job.ID,
		CandidateID: candidate.ID,
		Status:      models.StatusApplied,
		AppliedAt:   s.now().UTC(),
		CoverLetter: input.CoverLetter,
		ResumeURL:   resumeURL,
	}
	if err := s.applications.Add(ctx, application); err != nil {
		// a concurrent request may have won the unique index
		if exists, existsErr := s.applications.Exists(ctx, job.ID, candidate.ID); existsErr == nil && exists {
			return nil, errors.Wrap(ErrConflict, "already applied to this job")
		}
		return nil, dbError(err, "failed to create application")
	}
	log.Infof("candidate %d applied to job %d", candidate.ID, job.ID)

	candidateName := ""
	if candidate.User != nil {
		candidateName = candidate.User.FullName
	}
	s.bus.Publish(events.ApplicationSubmittedTopic, events.ApplicationSubmitted{
		ApplicationID: application.ID,
		JobID:         job.ID,
		CompanyID:     job.CompanyID,
		JobTitle:      job.Title,
		CandidateName: candidateName,
	})

	application.Job = job
	return application, nil
}

func (s *CandidateService) GetMyApplications(ctx context.Context, userID string) ([]models.JobApplication, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}
	applications, err := s.applications.GetByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to get applications")
	}
	return applications, nil
}

// WithdrawApplication removes the application unless the candidate is still expected at an upcoming interview.
func (s *CandidateService) WithdrawApplication(ctx context.Context, userID string, id uint) error {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return err
	}

	application, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return dbError(err, "failed to get application")
	}
	if application == nil || application.CandidateID != candidate.ID {
		return notFound("application")
	}

	if application.InterviewID != nil {
		interview, err := s.interviews.GetByID(ctx, *application.InterviewID)
		if err != nil {
			return dbError(err, "failed to get interview")
		}
		if interview != nil && interview.Status.Open() && !declinedBy(interview, candidate.ID) {
			return errors.Wrap(ErrConflict, "application has an upcoming interview, decline it first")
		}
	}

	if err := s.applications.Remove(ctx, application.ID); err != nil {
		return dbError(err, "failed to withdraw application")
	}
	log.Infof("application %d withdrawn", application.ID)
	return nil
}

func declinedBy(interview *models.Interview, candidateID uint) bool {
	return lo.ContainsBy(interview.Participants, func(p models.InterviewParticipant) bool {
		return p.CandidateID == candidateID && p.ParticipantStatus == models.ParticipantDeclined
	})
}

package services

import (
	"context"
	"fmt"
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

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type interviewRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Interview, error)
	ListByCompany(ctx context.Context, companyID uint, status models.InterviewStatus) ([]models.Interview, error)
	ListByCandidate(ctx context.Context, candidateID uint) ([]models.Interview, error)
	ListOverdue(ctx context.Context, before time.Time) ([]models.Interview, error)
}

type schedulableApplicationRepository interface {
	GetSchedulable(ctx context.Context, jobIDs []uint) ([]models.JobApplication, error)
}

type companyJobsLookup interface {
	GetIDsByCompany(ctx context.Context, companyID uint) ([]uint, error)
}

type ScheduleInput struct {
	ApplicationIDs []uint               `json:"application_ids" validate:"required,min=1,dive,gt=0"`
	Type           models.InterviewType `json:"type" validate:"required,oneof=online offline"`
	Date           string               `json:"date" validate:"required"`
	StartTime      string               `json:"start_time" validate:"required"`
	EndTime        string               `json:"end_time" validate:"required"`
	Timezone       string               `json:"timezone"`
	MeetingLink    string               `json:"meeting_link"`
	Location       string               `json:"location"`
	Note           string               `json:"note" validate:"max=2000"`
}

// UpdateInterviewInput either reschedules (Date, StartTime and EndTime together), edits details, or closes the interview with Status.
type UpdateInterviewInput struct {
	Date        *string                 `json:"date"`
	StartTime   *string                 `json:"start_time"`
	EndTime     *string                 `json:"end_time"`
	Timezone    *string                 `json:"timezone"`
	Type        *models.InterviewType   `json:"type" validate:"omitempty,oneof=online offline"`
	MeetingLink *string                 `json:"meeting_link"`
	Location    *string                 `json:"location"`
	Note        *string                 `json:"note" validate:"omitempty,max=2000"`
	Status      *models.InterviewStatus `json:"status" validate:"omitempty,oneof=done canceled"`
}

type InterviewService struct {
	uow          unitOfWork
	interviews   interviewRepository
	employers    employerLookup
	candidates   candidateLookup
	jobs         companyJobsLookup
	applications schedulableApplicationRepository
	bus          EventBus.Bus
	now          func() time.Time
}

func NewInterviewService(uow unitOfWork, interviews interviewRepository, employers employerLookup,
	candidates candidateLookup, jobs companyJobsLookup, applications schedulableApplicationRepository,
	bus EventBus.Bus) *InterviewService {

	return &InterviewService{
		uow:          uow,
		interviews:   interviews,
		employers:    employers,
		candidates:   candidates,
		jobs:         jobs,
		applications: applications,
		bus:          bus,
		now:          time.Now,
	}
}

// GetSchedulableApplications lists applications in the interview stage that have no interview yet.
// A zero jobID means every job of the employer's company.
func (s *InterviewService) GetSchedulableApplications(ctx context.Context, userID string, jobID uint) ([]models.JobApplication, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	jobIDs, err := s.jobs.GetIDsByCompany(ctx, employer.CompanyID)
	if err != nil {
		return nil, dbError(err, "failed to get company jobs")
	}
	if jobID != 0 {
		if !lo.Contains(jobIDs, jobID) {
			return nil, notFound("job")
		}
		jobIDs = []uint{jobID}
	}

	applications, err := s.applications.GetSchedulable(ctx, jobIDs)
	if err != nil {
		return nil, dbError(err, "failed to get schedulable applications")
	}
	return applications, nil
}

// ScheduleInterviews creates one interview per application. Interviews, participants, application links and
// candidate notifications are written in one transaction: either all of them exist afterwards or none.
func (s *InterviewService) ScheduleInterviews(ctx context.Context, userID string, input ScheduleInput) ([]models.Interview, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkVenue(input.Type, input.MeetingLink, input.Location); err != nil {
		return nil, err
	}
	start, end, tz, err := parseSlot(input.Date, input.StartTime, input.EndTime, input.Timezone)
	if err != nil {
		return nil, err
	}

	ids := lo.Uniq(input.ApplicationIDs)
	interviews := make([]models.Interview, 0, len(ids))
	var (
		notifications []models.Notification
		scheduled     []events.InterviewScheduled
	)

	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		applications, err := repos.Applications.GetByIDs(ctx, ids)
		if err != nil {
			return dbError(err, "failed to get applications")
		}
		if len(applications) != len(ids) {
			return notFound("application")
		}

		for _, application := range applications {
			if application.Job == nil || application.Job.CompanyID != employer.CompanyID {
				return errors.Wrapf(ErrForbidden, "application %d belongs to another company", application.ID)
			}
			if application.InterviewID != nil {
				return errors.Wrapf(ErrConflict, "application %d already has an interview", application.ID)
			}
			if application.Status != models.StatusInterview {
				return invalid("application %d is not in the interview stage", application.ID)
			}
		}

		for _, application := range applications {
			interview := models.Interview{
				JobID:       application.JobID,
				CompanyID:   application.Job.CompanyID,
				StartTime:   start,
				EndTime:     end,
				Timezone:    tz.String(),
				Type:        input.Type,
				MeetingLink: strings.TrimSpace(input.MeetingLink),
				Location:    strings.TrimSpace(input.Location),
				Status:      models.InterviewScheduled,
				Note:        input.Note,
			}
			if err := repos.Interviews.Create(ctx, &interview); err != nil {
				return dbError(err, "failed to create interview")
			}

			participant := models.InterviewParticipant{
				InterviewID:       interview.ID,
				ApplicationID:     application.ID,
				CandidateID:       application.CandidateID,
				ParticipantStatus: models.ParticipantInvited,
			}
			if err := repos.Interviews.CreateParticipant(ctx, &participant); err != nil {
				return dbError(err, "failed to create interview participant")
			}

			linked, err := repos.Applications.SetInterview(ctx, application.ID, interview.ID)
			if err != nil {
				return dbError(err, "failed to link application to interview")
			}
			if !linked {
				return errors.Wrapf(ErrConflict, "application %d already has an interview", application.ID)
			}

			interview.Job = application.Job
			interview.Participants = []models.InterviewParticipant{participant}
			interviews = append(interviews, interview)
		}

		profiles, err := repos.Candidates.GetProfilesByIDs(ctx,
			lo.Map(applications, func(a models.JobApplication, _ int) uint { return a.CandidateID }))
		if err != nil {
			return dbError(err, "failed to get candidate profiles")
		}
		userByCandidate := lo.SliceToMap(profiles, func(p models.CandidateProfile) (uint, string) {
			return p.ID, p.UserID
		})

		notifications = make([]models.Notification, 0, len(interviews))
		scheduled = make([]events.InterviewScheduled, 0, len(interviews))
		for _, interview := range interviews {
			candidateID := interview.Participants[0].CandidateID
			userID, ok := userByCandidate[candidateID]
			if !ok {
				return notFound(fmt.Sprintf("candidate profile %d", candidateID))
			}
			scheduled = append(scheduled, events.InterviewScheduled{
				InterviewID:     interview.ID,
				ApplicationID:   interview.Participants[0].ApplicationID,
				JobID:           interview.JobID,
				CompanyID:       interview.CompanyID,
				CandidateUserID: userID,
				StartTime:       interview.StartTime,
				EndTime:         interview.EndTime,
			})
			notifications = append(notifications, models.Notification{
				UserID: userID,
				Title:  "Interview scheduled",
				Body: fmt.Sprintf("You are invited to an interview for %q on %s",
					interview.Job.Title, interview.StartTime.In(tz).Format("2006-01-02 15:04 MST")),
				Type: models.NotificationInterviewScheduled,
				Data: map[string]any{
					"interview_id":   interview.ID,
					"application_id": interview.Participants[0].ApplicationID,
					"job_id":         interview.JobID,
					"start_time":     interview.StartTime.Format(time.RFC3339),
				},
			})
		}

		if err := repos.Notifications.CreateBatch(ctx, notifications); err != nil {
			return dbError(err, "failed to create interview notifications")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InterviewsScheduled.Add(float64(len(interviews)))
	log.Infof("employer %d scheduled %d interviews", employer.ID, len(interviews))
	publishNotifications(s.bus, notifications)
	for _, event := range scheduled {
		s.bus.Publish(events.InterviewScheduledTopic, event)
	}

	return interviews, nil
}

// GetInterviews returns the company's interviews by start time. An empty status means any status.
func (s *InterviewService) GetInterviews(ctx context.Context, userID string, status models.InterviewStatus) ([]models.Interview, error) {
	if status != "" && !validInterviewStatus(status) {
		return nil, invalid("unknown interview status %q", status)
	}

	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}

	interviews, err := s.interviews.ListByCompany(ctx, employer.CompanyID, status)
	if err != nil {
		return nil, dbError(err, "failed to get interviews")
	}
	return interviews, nil
}

func (s *InterviewService) GetInterview(ctx context.Context, userID string, id uint) (*models.Interview, error) {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}
	return s.companyInterview(ctx, employer, id)
}

func (s *InterviewService) GetCandidateInterviews(ctx context.Context, userID string) ([]models.Interview, error) {
	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}

	interviews, err := s.interviews.ListByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, dbError(err, "failed to get interviews")
	}
	return interviews, nil
}

func (s *InterviewService) UpdateInterview(ctx context.Context, userID string, id uint, input UpdateInterviewInput) (*models.Interview, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return nil, err
	}
	interview, err := s.companyInterview(ctx, employer, id)
	if err != nil {
		return nil, err
	}
	if !interview.Status.Open() {
		return nil, errors.Wrapf(ErrConflict, "interview is already %s", interview.Status)
	}

	fields := map[string]any{}
	rescheduled := false

	if input.Date != nil || input.StartTime != nil || input.EndTime != nil {
		if input.Date == nil || input.StartTime == nil || input.EndTime == nil {
			return nil, invalid("date, start_time and end_time are required to reschedule")
		}
		timezone := interview.Timezone
		if input.Timezone != nil {
			timezone = *input.Timezone
		}
		start, end, tz, err := parseSlot(*input.Date, *input.StartTime, *input.EndTime, timezone)
		if err != nil {
			return nil, err
		}
		if !start.Equal(interview.StartTime) || !end.Equal(interview.EndTime) {
			fields["start_time"] = start
			fields["end_time"] = end
			fields["timezone"] = tz.String()
			fields["status"] = models.InterviewRescheduled
			interview.StartTime = start
			rescheduled = true
		}
	}

	interviewType, link, location := interview.Type, interview.MeetingLink, interview.Location
	if input.Type != nil {
		interviewType = *input.Type
		fields["type"] = interviewType
	}
	if input.MeetingLink != nil {
		link = strings.TrimSpace(*input.MeetingLink)
		fields["meeting_link"] = link
	}
	if input.Location != nil {
		location = strings.TrimSpace(*input.Location)
		fields["location"] = location
	}
	if err := checkVenue(interviewType, link, location); err != nil {
		return nil, err
	}
	if input.Note != nil {
		fields["note"] = *input.Note
	}

	if input.Status != nil {
		if rescheduled {
			return nil, invalid("an interview cannot be rescheduled and closed at once")
		}
		fields["status"] = *input.Status
	}

	if len(fields) == 0 {
		return interview, nil
	}

	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if _, err := repos.Interviews.Update(ctx, interview.ID, fields); err != nil {
			return dbError(err, "failed to update interview")
		}
		if rescheduled {
			if err := repos.Interviews.ResetParticipants(ctx, interview.ID); err != nil {
				return dbError(err, "failed to reset participants")
			}
		}
		if input.Status == nil {
			return nil
		}
		switch *input.Status {
		case models.InterviewDone:
			return advanceApplications(ctx, repos, interview.ID)
		case models.InterviewCanceled:
			if _, err := repos.Applications.ReleaseInterview(ctx, interview.ID); err != nil {
				return dbError(err, "failed to release applications")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.companyInterview(ctx, employer, id)
	if err != nil {
		return nil, err
	}
	s.publishUpdate(updated)
	return updated, nil
}

// RespondToInvitation lets a candidate confirm or decline; either answer may be changed while the interview is open.
func (s *InterviewService) RespondToInvitation(ctx context.Context, userID string, interviewID uint,
	status models.ParticipantStatus) (*models.InterviewParticipant, error) {

	if status != models.ParticipantConfirmed && status != models.ParticipantDeclined {
		return nil, invalid("status must be confirmed or declined")
	}

	candidate, err := candidateOf(ctx, s.candidates, userID)
	if err != nil {
		return nil, err
	}

	var participant *models.InterviewParticipant
	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		participant, err = repos.Interviews.GetParticipant(ctx, interviewID, candidate.ID)
		if err != nil {
			return dbError(err, "failed to get participant")
		}
		if participant == nil {
			return notFound("interview")
		}
		if participant.Interview == nil || !participant.Interview.Status.Open() {
			return errors.Wrap(ErrConflict, "interview is no longer open")
		}
		if participant.ParticipantStatus == models.ParticipantNoShow {
			return errors.Wrap(ErrConflict, "participant was marked as no-show")
		}
		if participant.ParticipantStatus == status {
			return nil
		}

		if _, err := repos.Interviews.UpdateParticipantStatus(ctx, participant.ID, status); err != nil {
			return dbError(err, "failed to update participant")
		}
		participant.ParticipantStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	candidateName := ""
	if candidate.User != nil {
		candidateName = candidate.User.FullName
	}
	s.bus.Publish(events.ParticipantRespondedTopic, events.ParticipantResponded{
		InterviewID:   participant.InterviewID,
		ParticipantID: participant.ID,
		CompanyID:     participant.Interview.CompanyID,
		CandidateName: candidateName,
		Status:        status,
	})
	return participant, nil
}

// MarkNoShow records that a candidate missed an interview that has already started.
func (s *InterviewService) MarkNoShow(ctx context.Context, userID string, interviewID, candidateID uint) error {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return err
	}
	interview, err := s.companyInterview(ctx, employer, interviewID)
	if err != nil {
		return err
	}
	if interview.Status == models.InterviewCanceled {
		return errors.Wrap(ErrConflict, "interview was canceled")
	}
	if s.now().Before(interview.StartTime) {
		return invalid("interview has not started yet")
	}

	participant, found := lo.Find(interview.Participants, func(p models.InterviewParticipant) bool {
		return p.CandidateID == candidateID
	})
	if !found {
		return notFound("participant")
	}

	return s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if _, err := repos.Interviews.UpdateParticipantStatus(ctx, participant.ID, models.ParticipantNoShow); err != nil {
			return dbError(err, "failed to update participant")
		}
		return nil
	})
}

// FinishOverdue closes open interviews that ended before the given moment.
func (s *InterviewService) FinishOverdue(ctx context.Context, before time.Time) (int, error) {
	overdue, err := s.interviews.ListOverdue(ctx, before)
	if err != nil {
		return 0, dbError(err, "failed to get overdue interviews")
	}

	finished := 0
	for _, interview := range overdue {
		err := s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
			if _, err := repos.Interviews.Update(ctx, interview.ID, map[string]any{"status": models.InterviewDone}); err != nil {
				return dbError(err, "failed to finish interview")
			}
			return advanceApplications(ctx, repos, interview.ID)
		})
		if err != nil {
			log.Errorf("failed to finish interview %d: %v", interview.ID, err)
			continue
		}
		finished++
	}
	return finished, nil
}

func (s *InterviewService) companyInterview(ctx context.Context, employer *models.Employer, id uint) (*models.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "failed to get interview")
	}
	if interview == nil || interview.CompanyID != employer.CompanyID {
		return nil, notFound("interview")
	}
	return interview, nil
}

func (s *InterviewService) publishUpdate(interview *models.Interview) {
	userIDs := lo.FilterMap(interview.Participants, func(p models.InterviewParticipant, _ int) (string, bool) {
		if p.Candidate == nil {
			return "", false
		}
		return p.Candidate.UserID, true
	})

	jobTitle := ""
	if interview.Job != nil {
		jobTitle = interview.Job.Title
	}
	s.bus.Publish(events.InterviewUpdatedTopic, events.InterviewUpdated{
		InterviewID:      interview.ID,
		JobTitle:         jobTitle,
		Status:           interview.Status,
		StartTime:        interview.StartTime,
		CandidateUserIDs: userIDs,
	})
}

func advanceApplications(ctx context.Context, repos repositories.TxRepositories, interviewID uint) error {
	_, err := repos.Applications.AdvanceByInterview(ctx, interviewID, models.StatusInterview, models.StatusInterviewed)
	if err != nil {
		return dbError(err, "failed to advance applications")
	}
	return nil
}

func validInterviewStatus(status models.InterviewStatus) bool {
	return lo.Contains([]models.InterviewStatus{
		models.InterviewScheduled, models.InterviewRescheduled, models.InterviewDone, models.InterviewCanceled,
	}, status)
}

func checkVenue(interviewType models.InterviewType, link, location string) error {
	switch interviewType {
	case models.InterviewOnline:
		if strings.TrimSpace(link) == "" {
			return invalid("meeting_link is required for online interviews")
		}
		if err := validate.Var(link, "url"); err != nil {
			return invalid("meeting_link must be a url")
		}
	case models.InterviewOffline:
		if strings.TrimSpace(location) == "" {
			return invalid("location is required for offline interviews")
		}
	default:
		return invalid("unknown interview type %q", interviewType)
	}
	return nil
}

// parseSlot reads a local date and wall-clock times in the given zone (UTC when empty) and returns UTC instants.
func parseSlot(date, startTime, endTime, timezone string) (time.Time, time.Time, *time.Location, error) {
	if strings.TrimSpace(timezone) == "" {
		timezone = "UTC"
	}
	tz, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, time.Time{}, nil, invalid("unknown timezone %q", timezone)
	}

	day, err := time.ParseInLocation(dateLayout, date, tz)
	if err != nil {
		return time.Time{}, time.Time{}, nil, invalid("date must be YYYY-MM-DD")
	}
	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, day.Format(dateLayout)+" "+startTime, tz)
	if err != nil {
		return time.Time{}, time.Time{}, nil, invalid("start_time must be HH:MM")
	}
	end, err := time.ParseInLocation(dateLayout+" "+timeLayout, day.Format(dateLayout)+" "+endTime, tz)
	if err != nil {
		return time.Time{}, time.Time{}, nil, invalid("end_time must be HH:MM")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, nil, invalid("end_time must be after start_time")
	}
	return start.UTC(), end.UTC(), tz, nil
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterviews_ParticipantsAndListing(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	job := addJob(t, dbCtx, f, "Go Developer", true)
	ctx := context.Background()

	application := models.JobApplication{JobID: job.ID, CandidateID: f.candidate.ID,
		Status: models.StatusInterview, AppliedAt: time.Now().UTC()}
	applications := NewApplicationsRepository(dbCtx.DB)
	require.NoError(t, applications.Add(ctx, &application))

	schedulable, err := applications.GetSchedulable(ctx, []uint{job.ID})
	require.NoError(t, err)
	require.Len(t, schedulable, 1)

	start := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	interview := models.Interview{JobID: job.ID, CompanyID: f.company.ID, StartTime: start,
		EndTime: start.Add(time.Hour), Type: models.InterviewOnline, Status: models.InterviewScheduled}
	interviews := NewInterviewsRepository(dbCtx.DB)
	require.NoError(t, interviews.Create(ctx, &interview))
	require.NoError(t, interviews.CreateParticipant(ctx, &models.InterviewParticipant{
		InterviewID: interview.ID, ApplicationID: application.ID, CandidateID: f.candidate.ID,
		ParticipantStatus: models.ParticipantInvited,
	}))

	linked, err := applications.SetInterview(ctx, application.ID, interview.ID)
	require.NoError(t, err)
	assert.True(t, linked)
	linked, err = applications.SetInterview(ctx, application.ID, interview.ID)
	require.NoError(t, err)
	assert.False(t, linked, "an application joins one interview only")

	schedulable, err = applications.GetSchedulable(ctx, []uint{job.ID})
	require.NoError(t, err)
	assert.Empty(t, schedulable)

	byCandidate, err := interviews.ListByCandidate(ctx, f.candidate.ID)
	require.NoError(t, err)
	require.Len(t, byCandidate, 1)
	require.Len(t, byCandidate[0].Participants, 1)
	assert.Equal(t, "Ann Dev", byCandidate[0].Participants[0].Candidate.User.FullName)

	open, err := interviews.ListByCompany(ctx, f.company.ID, models.InterviewScheduled)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	done, err := interviews.ListByCompany(ctx, f.company.ID, models.InterviewDone)
	require.NoError(t, err)
	assert.Empty(t, done)

	overdue, err := interviews.ListOverdue(ctx, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, overdue, 1)
	overdue, err = interviews.ListOverdue(ctx, start)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

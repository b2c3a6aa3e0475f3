package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	args := m.Called(ctx, filename, file)
	return args.String(0), args.Error(1)
}

func TestApplyToJob_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	candidateID := env.signUp(t, "dev@mail.test", models.RoleCandidate)
	job := env.newJob(t, employerID, "Go Developer")

	application := env.apply(t, candidateID, job.ID)
	assert.Equal(t, models.StatusApplied, application.Status)

	_, err := env.candidates.ApplyToJob(ctx, candidateID, job.ID, ApplyInput{})
	assert.True(t, errors.Is(err, ErrConflict))

	closed := env.newJob(t, employerID, "Archived")
	_, err = env.jobs.ToggleActive(ctx, employerID, closed.ID, false)
	require.NoError(t, err)
	_, err = env.candidates.ApplyToJob(ctx, candidateID, closed.ID, ApplyInput{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.candidates.ApplyToJob(ctx, employerID, job.ID, ApplyInput{})
	assert.True(t, errors.Is(err, ErrForbidden))

	env.settle(t)
	notifications, err := env.notifications.GetNotifications(ctx, employerID, false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationApplication, notifications[0].Type)
}

func TestSaveJob_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	candidateID := env.signUp(t, "dev@mail.test", models.RoleCandidate)
	job := env.newJob(t, employerID, "Go Developer")

	require.NoError(t, env.candidates.SaveJob(ctx, candidateID, job.ID))
	require.NoError(t, env.candidates.SaveJob(ctx, candidateID, job.ID))

	saved, err := env.candidates.GetSavedJobs(ctx, candidateID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	require.NoError(t, env.candidates.UnsaveJob(ctx, candidateID, job.ID))
	require.NoError(t, env.candidates.UnsaveJob(ctx, candidateID, job.ID))

	isSaved, err := env.candidates.IsJobSaved(ctx, candidateID, job.ID)
	require.NoError(t, err)
	assert.False(t, isSaved)

	err = env.candidates.SaveJob(ctx, candidateID, job.ID+100)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestJobCreated_NotifiesCompanyFollowers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	follower := env.signUp(t, "fan@mail.test", models.RoleCandidate)
	stranger := env.signUp(t, "other@mail.test", models.RoleCandidate)

	require.NoError(t, env.candidates.SaveJob(ctx, follower, env.newJob(t, employerID, "Go Developer").ID))
	env.newJob(t, employerID, "Go Lead")
	env.settle(t)

	notifications, err := env.notifications.GetNotifications(ctx, follower, false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationJobCreated, notifications[0].Type)

	count, err := env.notifications.UnreadCount(ctx, stranger)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExperience_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.signUp(t, "ann@mail.test", models.RoleCandidate)
	bob := env.signUp(t, "bob@mail.test", models.RoleCandidate)

	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(-1, 0, 0)
	_, err := env.candidates.AddExperience(ctx, ann, ExperienceInput{
		CompanyName: "Initech", Position: "Dev", StartDate: start, EndDate: &end,
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	experience, err := env.candidates.AddExperience(ctx, ann, ExperienceInput{
		CompanyName: "Initech", Position: "Dev", StartDate: start, EndDate: &end, IsCurrent: true,
	})
	require.NoError(t, err)
	assert.Nil(t, experience.EndDate)

	_, err = env.candidates.UpdateExperience(ctx, bob, experience.ID, ExperienceInput{
		CompanyName: "Hijack", Position: "Dev", StartDate: start,
	})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(env.candidates.DeleteExperience(ctx, bob, experience.ID), ErrNotFound))

	require.NoError(t, env.candidates.DeleteExperience(ctx, ann, experience.ID))
	list, err := env.candidates.GetExperiences(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCandidateSkills(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.signUp(t, "ann@mail.test", models.RoleCandidate)

	skill, err := env.candidates.AddCandidateSkill(ctx, ann, CandidateSkillInput{SkillID: 1, Level: "expert"})
	require.NoError(t, err)
	require.NotNil(t, skill.Skill)

	_, err = env.candidates.AddCandidateSkill(ctx, ann, CandidateSkillInput{SkillID: 1})
	assert.True(t, errors.Is(err, ErrConflict))
	_, err = env.candidates.AddCandidateSkill(ctx, ann, CandidateSkillInput{SkillID: 9999})
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, env.candidates.RemoveCandidateSkill(ctx, ann, 1))
	assert.True(t, errors.Is(env.candidates.RemoveCandidateSkill(ctx, ann, 1), ErrNotFound))
}

func TestUpsertCandidateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.signUp(t, "ann@mail.test", models.RoleCandidate)
	employerID, _ := env.newEmployer(t, "hr@acme.test")

	profile, err := env.candidates.UpsertCandidateProfile(ctx, ann, CandidateProfileInput{
		Headline:           " Backend developer ",
		YearsOfExperience:  4,
		PreferredLocations: []string{"Berlin", " Berlin", "Remote"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend developer", profile.Headline)
	assert.Equal(t, []string{"Berlin", "Remote"}, profile.PreferredLocations)

	_, err = env.candidates.UpsertCandidateProfile(ctx, employerID, CandidateProfileInput{})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.signUp(t, "ann@mail.test", models.RoleCandidate)

	_, err := env.candidates.UploadAvatar(ctx, ann, "me.png", strings.NewReader("png"))
	assert.True(t, errors.Is(err, ErrMediaUnavailable))

	uploader := &mockUploader{}
	uploader.On("Upload", mock.Anything, "me.png", mock.Anything).Return("https://cdn.test/me.png", nil).Once()
	env.candidates.media = uploader

	profile, err := env.candidates.UploadAvatar(ctx, ann, "me.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/me.png", profile.AvatarURL)
	uploader.AssertExpectations(t)
}

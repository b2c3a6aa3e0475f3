package services

import (
	"context"
	"sync"
	"testing"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJobs_ReturnsActiveJobsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")

	open := env.newJob(t, employerID, "Go Developer")
	closed := env.newJob(t, employerID, "Archived Role")
	_, err := env.jobs.ToggleActive(ctx, employerID, closed.ID, false)
	require.NoError(t, err)

	jobs, err := env.jobs.GetJobs(ctx, repositories.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{open.ID}, lo.Map(jobs, func(j models.Job, _ int) uint { return j.ID }))

	_, err = env.jobs.GetJobs(ctx, repositories.JobFilter{Limit: -1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGetJobByID_CountsEveryView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	job := env.newJob(t, employerID, "Go Developer")

	first, err := env.jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ViewCount)

	const readers = 10
	var wg sync.WaitGroup
	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.jobs.GetJobByID(ctx, job.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := env.jobsRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(readers+1), stored.ViewCount)

	_, err = env.jobs.GetJobByID(ctx, job.ID+100)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateJob_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	candidateID := env.signUp(t, "dev@mail.test", models.RoleCandidate)

	salaryMin, salaryMax := int64(5000), int64(1000)
	_, err := env.jobs.CreateJob(ctx, employerID, JobInput{
		Title: "Go", JobType: models.FullTime, ExperienceLevel: models.MiddleLevel,
		SalaryMin: &salaryMin, SalaryMax: &salaryMax,
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.jobs.CreateJob(ctx, employerID, JobInput{Title: "Go", JobType: "gig", ExperienceLevel: models.MiddleLevel})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.jobs.CreateJob(ctx, candidateID, JobInput{Title: "Go", JobType: models.FullTime, ExperienceLevel: models.MiddleLevel})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestCreateJob_StoresSkillsAndTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")

	job, err := env.jobs.CreateJob(ctx, employerID, JobInput{
		Title:           "Go Developer",
		JobType:         models.Contract,
		ExperienceLevel: models.SeniorLevel,
		SkillIDs:        []uint{1, 2},
		Tags:            []string{" Remote ", "remote", "Go"},
	})
	require.NoError(t, err)

	assert.Len(t, job.Skills, 2)
	tags := lo.Map(job.Tags, func(tag models.JobTag, _ int) string { return tag.Tag })
	assert.ElementsMatch(t, []string{"remote", "go"}, tags)

	_, err = env.jobs.CreateJob(ctx, employerID, JobInput{
		Title: "Go", JobType: models.FullTime, ExperienceLevel: models.MiddleLevel, SkillIDs: []uint{9999},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUpdateJob_OnlyOwnCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID, _ := env.newEmployer(t, "hr@acme.test")
	strangerID, _ := env.newEmployer(t, "hr@globex.test")
	job := env.newJob(t, ownerID, "Go Developer")

	title := "Senior Go Developer"
	_, err := env.jobs.UpdateJob(ctx, strangerID, job.ID, UpdateJobInput{Title: &title})
	assert.True(t, errors.Is(err, ErrForbidden))

	updated, err := env.jobs.UpdateJob(ctx, ownerID, job.ID, UpdateJobInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestDeleteJob_ConflictWhenApplicationsExist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	candidateID := env.signUp(t, "dev@mail.test", models.RoleCandidate)

	withApplicant := env.newJob(t, employerID, "Go Developer")
	env.apply(t, candidateID, withApplicant.ID)
	empty := env.newJob(t, employerID, "Designer")

	err := env.jobs.DeleteJob(ctx, employerID, withApplicant.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	require.NoError(t, env.jobs.DeleteJob(ctx, employerID, empty.ID))
	_, err = env.jobs.GetJobByID(ctx, empty.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetApplications_OwnCompanyOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID, _ := env.newEmployer(t, "hr@acme.test")
	strangerID, _ := env.newEmployer(t, "hr@globex.test")
	job := env.newJob(t, ownerID, "Go Developer")
	other := env.newJob(t, ownerID, "Designer")

	first := env.apply(t, env.signUp(t, "ann@mail.test", models.RoleCandidate), job.ID)
	second := env.apply(t, env.signUp(t, "bob@mail.test", models.RoleCandidate), job.ID)
	env.apply(t, env.signUp(t, "eve@mail.test", models.RoleCandidate), other.ID)

	applications, err := env.jobs.GetApplications(ctx, ownerID, job.ID)
	require.NoError(t, err)
	ids := lo.Map(applications, func(a models.JobApplication, _ int) uint { return a.ID })
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	_, err = env.jobs.GetApplications(ctx, strangerID, job.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = env.jobs.GetApplications(ctx, ownerID, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// failingCommit runs every write of fn and then rolls the transaction back.
type failingCommit struct {
	inner *repositories.UnitOfWork
}

var errCommit = errors.New("commit failed")

func (u failingCommit) Do(ctx context.Context, fn func(repos repositories.TxRepositories) error) error {
	return u.inner.Do(ctx, func(repos repositories.TxRepositories) error {
		if err := fn(repos); err != nil {
			return err
		}
		return errCommit
	})
}

func TestUpdateJob_WritesAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")

	job, err := env.jobs.CreateJob(ctx, employerID, JobInput{
		Title: "Go Developer", JobType: models.FullTime, ExperienceLevel: models.MiddleLevel,
		SkillIDs: []uint{1}, Tags: []string{"go"},
	})
	require.NoError(t, err)

	db := env.db.DB
	failing := NewJobService(failingCommit{inner: repositories.NewUnitOfWork(db)}, env.jobsRepo,
		repositories.NewEmployersRepository(db), env.applications,
		repositories.NewSkillsRepository(db), env.bus)

	title := "Senior Go Developer"
	_, err = failing.UpdateJob(ctx, employerID, job.ID, UpdateJobInput{
		Title:    &title,
		SkillIDs: &[]uint{2, 3},
		Tags:     &[]string{"remote"},
	})
	assert.True(t, errors.Is(err, errCommit))

	stored, err := env.jobsRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", stored.Title)
	assert.Equal(t, []uint{1}, lo.Map(stored.Skills, func(skill models.Skill, _ int) uint { return skill.ID }))
	assert.Equal(t, []string{"go"}, lo.Map(stored.Tags, func(tag models.JobTag, _ int) string { return tag.Tag }))

	updated, err := env.jobs.UpdateJob(ctx, employerID, job.ID, UpdateJobInput{
		Title:    &title,
		SkillIDs: &[]uint{2, 3},
		Tags:     &[]string{"remote"},
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Len(t, updated.Skills, 2)
	assert.Equal(t, []string{"remote"}, lo.Map(updated.Tags, func(tag models.JobTag, _ int) string { return tag.Tag }))
}

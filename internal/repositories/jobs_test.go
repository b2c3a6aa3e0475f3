package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobs_FindReturnsActiveOnly(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	active := addJob(t, dbCtx, f, "Go Developer", true)
	addJob(t, dbCtx, f, "Closed Go Role", false)

	jobs, err := NewJobsRepository(dbCtx.DB).Find(context.Background(), JobFilter{})
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.Equal(t, active.ID, jobs[0].ID)
	require.NotNil(t, jobs[0].Company)
	assert.Equal(t, "Acme", jobs[0].Company.Name)
}

func TestJobs_FindFiltersByTitleCaseInsensitive(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	addJob(t, dbCtx, f, "Senior GO Engineer", true)
	addJob(t, dbCtx, f, "Designer", true)

	jobs, err := NewJobsRepository(dbCtx.DB).Find(context.Background(), JobFilter{Title: "go"})
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.Equal(t, "Senior GO Engineer", jobs[0].Title)
}

func TestJobs_FindFilters(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	ctx := context.Background()
	jobs := NewJobsRepository(dbCtx.DB)

	other := models.Company{Name: "Globex"}
	require.NoError(t, NewCompaniesRepository(dbCtx.DB).Add(ctx, &other))

	add := func(title, location string, companyID uint, jobType models.JobType, level models.ExperienceLevel) {
		job := models.Job{
			CompanyID: companyID, CreatedByEmployerID: f.employer.ID, Title: title, Location: location,
			JobType: jobType, ExperienceLevel: level, IsActive: true, PublishedAt: time.Now().UTC(),
		}
		require.NoError(t, jobs.Add(ctx, &job))
	}
	add("Go Developer", "Berlin, Germany", f.company.ID, models.FullTime, models.SeniorLevel)
	add("Go Intern", "Remote", f.company.ID, models.Internship, models.EntryLevel)
	add("Java Developer", "berlin", other.ID, models.Contract, models.SeniorLevel)
	add("100% Remote QA", "Remote", other.ID, models.PartTime, models.JuniorLevel)

	tests := []struct {
		name   string
		filter JobFilter
		want   []string
	}{
		{"location substring ignores case", JobFilter{Location: "BERLIN"}, []string{"Go Developer", "Java Developer"}},
		{"exact job type", JobFilter{JobType: models.Internship}, []string{"Go Intern"}},
		{"exact experience level", JobFilter{ExperienceLevel: models.SeniorLevel}, []string{"Go Developer", "Java Developer"}},
		{"company", JobFilter{CompanyID: other.ID}, []string{"Java Developer", "100% Remote QA"}},
		{"combined", JobFilter{Title: "developer", CompanyID: f.company.ID}, []string{"Go Developer"}},
		{"job type is not a substring match", JobFilter{JobType: "time"}, nil},
		{"percent is literal", JobFilter{Title: "%"}, []string{"100% Remote QA"}},
		{"underscore is literal", JobFilter{Title: "_"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := jobs.Find(ctx, tt.filter)
			require.NoError(t, err)
			titles := make([]string, 0, len(found))
			for _, job := range found {
				titles = append(titles, job.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}

func TestJobs_GetByIDMissing(t *testing.T) {
	dbCtx := newTestDb(t)

	job, err := NewJobsRepository(dbCtx.DB).GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestJobs_IncrementViewsConcurrently(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	job := addJob(t, dbCtx, f, "Go Developer", true)
	jobs := NewJobsRepository(dbCtx.DB)

	const readers = 20
	var wg sync.WaitGroup
	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := jobs.IncrementViews(context.Background(), job.ID)
			assert.NoError(t, err)
			assert.True(t, found)
		}()
	}
	wg.Wait()

	stored, err := jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(readers), stored.ViewCount)
}

func TestJobs_ReplaceTagsAndRemove(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	job := addJob(t, dbCtx, f, "Go Developer", true)
	jobs := NewJobsRepository(dbCtx.DB)
	ctx := context.Background()

	require.NoError(t, jobs.ReplaceTags(ctx, job.ID, []string{"remote", "go"}))
	require.NoError(t, jobs.ReplaceTags(ctx, job.ID, []string{"hybrid"}))

	stored, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, "hybrid", stored.Tags[0].Tag)

	require.NoError(t, jobs.Remove(ctx, job.ID))
	stored, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	var tags int64
	require.NoError(t, dbCtx.DB.Model(&models.JobTag{}).Count(&tags).Error)
	assert.Zero(t, tags)
}

func TestJobs_DeactivateExpired(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	jobs := NewJobsRepository(dbCtx.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := addJob(t, dbCtx, f, "Expired", true)
	current := addJob(t, dbCtx, f, "Current", true)
	require.NoError(t, jobs.Update(ctx, expired.ID, map[string]any{"deadline": now.Add(-time.Hour)}))
	require.NoError(t, jobs.Update(ctx, current.ID, map[string]any{"deadline": now.Add(time.Hour)}))

	count, err := jobs.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	active, err := jobs.Find(ctx, JobFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)
}

func TestJobs_GetByCompanyIncludesInactive(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	addJob(t, dbCtx, f, "Open", true)
	addJob(t, dbCtx, f, "Closed", false)

	jobs, err := NewJobsRepository(dbCtx.DB).GetByCompany(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db            *repositories.DbContext
	bus           EventBus.Bus
	profiles      *repositories.Profiles
	companies     *repositories.Companies
	jobsRepo      *repositories.Jobs
	applications  *repositories.Applications
	auth          *AuthService
	jobs          *JobService
	employers     *EmployerService
	candidates    *CandidateService
	interviews    *InterviewService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(config.DBConfig{
		Driver:           config.DriverSqlite,
		ConnectionString: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	db := dbCtx.DB
	bus := EventBus.New()
	t.Cleanup(bus.WaitAsync)
	uow := repositories.NewUnitOfWork(db)
	profiles := repositories.NewProfilesRepository(db)
	companies := repositories.NewCompaniesRepository(db)
	employers := repositories.NewEmployersRepository(db)
	jobs := repositories.NewJobsRepository(db)
	applications := repositories.NewApplicationsRepository(db)
	candidates := repositories.NewCandidatesRepository(db)
	skills := repositories.NewCachedSkills(repositories.NewSkillsRepository(db))
	interviews := repositories.NewInterviewsRepository(db)

	notifications, err := NewNotificationService(repositories.NewNotificationsRepository(db), candidates,
		employers, profiles, bus)
	require.NoError(t, err)

	return &testEnv{
		db:           dbCtx,
		bus:          bus,
		profiles:     profiles,
		companies:    companies,
		jobsRepo:     jobs,
		applications: applications,
		auth:         NewAuthService(uow, profiles, auth.NewIssuer("test-secret", time.Minute), time.Hour, bus),
		jobs:         NewJobService(uow, jobs, employers, applications, skills, bus),
		employers:    NewEmployerService(employers, profiles, companies, jobs, applications, bus),
		candidates: NewCandidateService(candidates, profiles, jobs, applications, interviews, skills,
			nil, bus),
		interviews:    NewInterviewService(uow, interviews, employers, candidates, jobs, applications, bus),
		notifications: notifications,
	}
}

func (e *testEnv) signUp(t *testing.T, email string, role models.Role) string {
	t.Helper()
	session, err := e.auth.SignUp(context.Background(), SignUpInput{
		Email:    email,
		Password: "password123",
		FullName: "User " + email,
		Role:     role,
	})
	require.NoError(t, err)
	return session.User.ID
}

// newEmployer signs up an employer attached to a fresh company.
func (e *testEnv) newEmployer(t *testing.T, email string) (string, *models.Company) {
	t.Helper()
	ctx := context.Background()

	company := &models.Company{Name: "Company of " + email}
	require.NoError(t, e.companies.Add(ctx, company))

	userID := e.signUp(t, email, models.RoleEmployer)
	_, err := e.employers.CreateEmployerProfile(ctx, userID, EmployerProfileInput{CompanyID: company.ID, Position: "HR"})
	require.NoError(t, err)
	return userID, company
}

func (e *testEnv) newJob(t *testing.T, employerID string, title string) *models.Job {
	t.Helper()
	job, err := e.jobs.CreateJob(context.Background(), employerID, JobInput{
		Title:           title,
		JobType:         models.FullTime,
		ExperienceLevel: models.MiddleLevel,
	})
	require.NoError(t, err)
	return job
}

func (e *testEnv) apply(t *testing.T, candidateID string, jobID uint) *models.JobApplication {
	t.Helper()
	application, err := e.candidates.ApplyToJob(context.Background(), candidateID, jobID, ApplyInput{})
	require.NoError(t, err)
	return application
}

// toInterviewStage moves applications into the stage where they can be scheduled.
func (e *testEnv) toInterviewStage(t *testing.T, employerID string, applicationIDs ...uint) {
	t.Helper()
	for _, id := range applicationIDs {
		_, err := e.employers.UpdateApplicationStatus(context.Background(), employerID, id, models.StatusInterview)
		require.NoError(t, err)
	}
}

// settle waits for asynchronous event handlers and fails instead of hanging when the bus is stuck.
func (e *testEnv) settle(t *testing.T) {
	t.Helper()
	within(t, 5*time.Second, "event handlers", e.bus.WaitAsync)
}

func within(t *testing.T, timeout time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s did not finish within %s", what, timeout)
	}
}

package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/jobconnect/jobboard-api/internal/api"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/jobconnect/jobboard-api/internal/services"
	"gorm.io/gorm"
)

// Repositories are the database-bound stores shared by the services.
type Repositories struct {
	Profiles      *repositories.Profiles
	Tokens        *repositories.Tokens
	Companies     *repositories.Companies
	Employers     *repositories.Employers
	Jobs          *repositories.Jobs
	Applications  *repositories.Applications
	Candidates    *repositories.Candidates
	Skills        *repositories.CachedSkills
	Interviews    *repositories.Interviews
	Notifications *repositories.Notifications
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:      repositories.NewProfilesRepository(db),
		Tokens:        repositories.NewTokensRepository(db),
		Companies:     repositories.NewCompaniesRepository(db),
		Employers:     repositories.NewEmployersRepository(db),
		Jobs:          repositories.NewJobsRepository(db),
		Applications:  repositories.NewApplicationsRepository(db),
		Candidates:    repositories.NewCandidatesRepository(db),
		Skills:        repositories.NewCachedSkills(repositories.NewSkillsRepository(db)),
		Interviews:    repositories.NewInterviewsRepository(db),
		Notifications: repositories.NewNotificationsRepository(db),
	}
}

// NewServices builds every service over repos. media may be nil when uploads are not configured.
func NewServices(db *gorm.DB, repos *Repositories, cfg config.ServerConfig, issuer *auth.Issuer,
	media services.MediaUploader, bus EventBus.Bus) (api.Services, error) {

	uow := repositories.NewUnitOfWork(db)

	notifications, err := services.NewNotificationService(repos.Notifications, repos.Candidates,
		repos.Employers, repos.Profiles, bus)
	if err != nil {
		return api.Services{}, err
	}

	return api.Services{
		Auth: services.NewAuthService(uow, repos.Profiles, issuer, cfg.RefreshTokenTTL, bus),
		Jobs: services.NewJobService(uow, repos.Jobs, repos.Employers, repos.Applications, repos.Skills, bus),
		Employers: services.NewEmployerService(repos.Employers, repos.Profiles, repos.Companies,
			repos.Jobs, repos.Applications, bus),
		Companies: services.NewCompanyService(repos.Companies, repos.Employers, media),
		Candidates: services.NewCandidateService(repos.Candidates, repos.Profiles, repos.Jobs,
			repos.Applications, repos.Interviews, repos.Skills, media, bus),
		Skills: services.NewSkillService(repos.Skills),
		Interviews: services.NewInterviewService(uow, repos.Interviews, repos.Employers, repos.Candidates,
			repos.Jobs, repos.Applications, bus),
		Notifications: notifications,
	}, nil
}

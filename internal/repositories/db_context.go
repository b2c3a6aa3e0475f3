package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(cfg config.DBConfig) (*DbContext, error) {

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.ConnectionString)
	case config.DriverSqlite:
		dialector = sqlite.Open(cfg.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSqlite {
		// sqlite allows one writer; a single connection also keeps in-memory databases alive
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {

	entities := []any{
		models.Profile{},
		models.RefreshToken{},
		models.PasswordReset{},
		models.Company{},
		models.Employer{},
		models.Skill{},
		models.Job{},
		models.JobTag{},
		models.CandidateProfile{},
		models.CandidateExperience{},
		models.CandidateEducation{},
		models.CandidateSkill{},
		models.SavedJob{},
		models.JobApplication{},
		models.Interview{},
		models.InterviewParticipant{},
		models.Notification{},
	}

	for _, entity := range entities {
		if err := c.DB.AutoMigrate(entity); err != nil {
			return fmt.Errorf("failed to migrate %T entity: %w", entity, err)
		}
	}

	var skillsCount int64
	if err := c.DB.Model(models.Skill{}).Count(&skillsCount).Error; err != nil {
		return fmt.Errorf("failed to count skills: %w", err)
	}

	if skillsCount == 0 {
		if err := c.PopulateSkills(); err != nil {
			return fmt.Errorf("failed to populate skills: %w", err)
		}
	}

	return nil
}

var defaultSkills = []models.Skill{
	{Name: "Go", Category: "programming"},
	{Name: "Java", Category: "programming"},
	{Name: "JavaScript", Category: "programming"},
	{Name: "TypeScript", Category: "programming"},
	{Name: "Python", Category: "programming"},
	{Name: "React Native", Category: "mobile"},
	{Name: "PostgreSQL", Category: "database"},
	{Name: "Docker", Category: "devops"},
	{Name: "Communication", Category: "soft"},
	{Name: "English", Category: "language"},
}

func (c *DbContext) PopulateSkills() error {
	skills := make([]models.Skill, len(defaultSkills))
	copy(skills, defaultSkills)

	if err := c.DB.Create(&skills).Error; err != nil {
		return fmt.Errorf("failed to create skills in the database: %w", err)
	}
	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

// TxRepositories are repositories bound to one open transaction.
type TxRepositories struct {
	Profiles      *Profiles
	Tokens        *Tokens
	Candidates    *Candidates
	Jobs          *Jobs
	Applications  *Applications
	Interviews    *Interviews
	Notifications *Notifications
}

func newTxRepositories(tx *gorm.DB) TxRepositories {
	return TxRepositories{
		Profiles:      NewProfilesRepository(tx),
		Tokens:        NewTokensRepository(tx),
		Candidates:    NewCandidatesRepository(tx),
		Jobs:          NewJobsRepository(tx),
		Applications:  NewApplicationsRepository(tx),
		Interviews:    NewInterviewsRepository(tx),
		Notifications: NewNotificationsRepository(tx),
	}
}

type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do runs fn in a transaction; any returned error rolls back every write made through the repositories.
func (u *UnitOfWork) Do(ctx context.Context, fn func(repos TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepositories(tx))
	})
}

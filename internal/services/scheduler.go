package services

import (
	"context"
	"time"

	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/jobconnect/jobboard-api/internal/metrics"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type jobExpiryRepository interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenCleanupRepository interface {
	RemoveExpired(ctx context.Context, before time.Time) (int64, error)
}

type overdueInterviewFinisher interface {
	FinishOverdue(ctx context.Context, before time.Time) (int, error)
}

// JobExpirer closes postings whose deadline has passed and purges expired auth tokens.
type JobExpirer struct {
	jobs   jobExpiryRepository
	tokens tokenCleanupRepository
	now    func() time.Time
}

func NewJobExpirer(jobs jobExpiryRepository, tokens tokenCleanupRepository) *JobExpirer {
	return &JobExpirer{jobs: jobs, tokens: tokens, now: time.Now}
}

func (e *JobExpirer) Run(ctx context.Context) {
	now := e.now().UTC()

	deactivated, err := e.jobs.DeactivateExpired(ctx, now)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("Failed to deactivate expired jobs: %v", err)
	} else {
		metrics.ExpiredJobs.Add(float64(deactivated))
		log.Infof("Expired jobs were deactivated at %v, affected rows: %v", now, deactivated)
	}

	removed, err := e.tokens.RemoveExpired(ctx, now)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("Failed to remove expired tokens: %v", err)
	} else if removed > 0 {
		log.Infof("Removed %v expired tokens", removed)
	}
}

// InterviewSweeper marks open interviews as done once they ended more than the grace period ago.
type InterviewSweeper struct {
	interviews overdueInterviewFinisher
	grace      time.Duration
	now        func() time.Time
}

func NewInterviewSweeper(interviews overdueInterviewFinisher, grace time.Duration) *InterviewSweeper {
	return &InterviewSweeper{interviews: interviews, grace: grace, now: time.Now}
}

func (s *InterviewSweeper) Run(ctx context.Context) {
	finished, err := s.interviews.FinishOverdue(ctx, s.now().UTC().Add(-s.grace))
	if err != nil {
		log.Errorf("Failed to finish overdue interviews: %v", err)
		return
	}
	if finished > 0 {
		log.Infof("Finished %v overdue interviews", finished)
	}
}

// Scheduler runs the periodic maintenance tasks on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewScheduler(ctx context.Context, cfg config.SchedulerConfig, expirer *JobExpirer, sweeper *InterviewSweeper) (*Scheduler, error) {

	s := &Scheduler{cron: cron.New(), ctx: ctx}

	if _, err := s.cron.AddFunc(cfg.JobExpiryCron, func() { expirer.Run(s.ctx) }); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.InterviewSweepCron, func() { sweeper.Run(s.ctx) }); err != nil {
		return nil, err
	}

	s.cron.Start()
	log.Infof("scheduler started, job expiry: %q, interview sweep: %q", cfg.JobExpiryCron, cfg.InterviewSweepCron)
	return s, nil
}

// Stop waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

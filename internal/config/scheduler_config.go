package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type SchedulerConfig struct {
	JobExpiryCron      string        `mapstructure:"job_expiry_cron"`
	InterviewSweepCron string        `mapstructure:"interview_sweep_cron"`
	InterviewGrace     time.Duration `mapstructure:"interview_grace"`
}

func (config SchedulerConfig) validate() error {
	var errs []error

	for name, spec := range map[string]string{
		"job_expiry_cron":      config.JobExpiryCron,
		"interview_sweep_cron": config.InterviewSweepCron,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", name, spec, err))
		}
	}

	if config.InterviewGrace < 0 {
		errs = append(errs, errors.New("interview_grace must not be negative"))
	}

	return errors.Join(errs...)
}

func (config SchedulerConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"scheduler.job_expiry_cron":      "JOB_EXPIRY_CRON",
		"scheduler.interview_sweep_cron": "INTERVIEW_SWEEP_CRON",
		"scheduler.interview_grace":      "INTERVIEW_GRACE",
	})
}

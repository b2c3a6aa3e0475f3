package services

import (
	"context"
	"testing"
	"time"

	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExpiry struct {
	mock.Mock
}

func (m *mockExpiry) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockExpiry) RemoveExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockExpiry) FinishOverdue(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)
	return args.Int(0), args.Error(1)
}

func TestJobExpirer_Run(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockExpiry{}
	repo.On("DeactivateExpired", mock.Anything, now).Return(int64(2), nil).Once()
	repo.On("RemoveExpired", mock.Anything, now).Return(int64(0), errors.New("db is down")).Once()

	expirer := NewJobExpirer(repo, repo)
	expirer.now = func() time.Time { return now }
	expirer.Run(context.Background())

	repo.AssertExpectations(t)
}

func TestInterviewSweeper_AppliesGrace(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	finisher := &mockExpiry{}
	finisher.On("FinishOverdue", mock.Anything, now.Add(-2*time.Hour)).Return(1, nil).Once()

	sweeper := NewInterviewSweeper(finisher, 2*time.Hour)
	sweeper.now = func() time.Time { return now }
	sweeper.Run(context.Background())

	finisher.AssertExpectations(t)
}

func TestNewScheduler_RejectsBadCron(t *testing.T) {
	repo := &mockExpiry{}
	_, err := NewScheduler(context.Background(), config.SchedulerConfig{
		JobExpiryCron:      "every hour",
		InterviewSweepCron: "*/15 * * * *",
	}, NewJobExpirer(repo, repo), NewInterviewSweeper(repo, time.Hour))
	assert.Error(t, err)

	scheduler, err := NewScheduler(context.Background(), config.SchedulerConfig{
		JobExpiryCron:      "0 * * * *",
		InterviewSweepCron: "*/15 * * * *",
	}, NewJobExpirer(repo, repo), NewInterviewSweeper(repo, time.Hour))
	require.NoError(t, err)
	scheduler.Stop()
}

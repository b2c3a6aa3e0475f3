package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_ReadFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ann@mail.test", models.RoleCandidate)

	var (
		mu        sync.Mutex
		published []models.Notification
	)
	require.NoError(t, env.bus.Subscribe(events.NotificationCreatedTopic, func(e events.NotificationCreated) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, e.Notification)
	}))

	for _, status := range []models.ApplicationStatus{models.StatusReviewing, models.StatusOffered} {
		env.bus.Publish(events.ApplicationStatusChangedTopic, events.ApplicationStatusChanged{
			ApplicationID: 1, CandidateUserID: userID, JobTitle: "Go Developer",
			OldStatus: models.StatusApplied, NewStatus: status,
		})
	}
	env.settle(t)
	require.Len(t, published, 2)
	assert.NotZero(t, published[0].ID, "published notifications are already stored")

	count, err := env.notifications.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.notifications.MarkRead(ctx, userID, published[0].ID))
	err = env.notifications.MarkRead(ctx, "someone-else", published[1].ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	marked, err := env.notifications.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	unread, err := env.notifications.GetNotifications(ctx, userID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestLinkTelegram(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ann@mail.test", models.RoleCandidate)

	assert.True(t, errors.Is(env.notifications.LinkTelegram(ctx, userID, 0), ErrInvalidInput))
	require.NoError(t, env.notifications.LinkTelegram(ctx, userID, 4242))

	profile, err := env.profiles.GetByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, profile.TelegramChatID)
	assert.Equal(t, int64(4242), *profile.TelegramChatID)
}

func TestNotifications_HandlersDoNotLockTheBus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employerID, _ := env.newEmployer(t, "hr@acme.test")
	candidateID := env.signUp(t, "dev@mail.test", models.RoleCandidate)
	job := env.newJob(t, employerID, "Go Developer")

	var created atomic.Int32
	require.NoError(t, env.bus.Subscribe(events.NotificationCreatedTopic, func(events.NotificationCreated) {
		created.Add(1)
	}))

	within(t, 5*time.Second, "ApplyToJob", func() {
		_, err := env.candidates.ApplyToJob(ctx, candidateID, job.ID, ApplyInput{})
		assert.NoError(t, err)
	})
	within(t, 5*time.Second, "ResetPassword", func() {
		assert.NoError(t, env.auth.ResetPassword(ctx, "dev@mail.test"))
	})
	within(t, 5*time.Second, "an unrelated publish", func() {
		env.bus.Publish("UnrelatedTopic")
	})
	env.settle(t)

	assert.Equal(t, int32(2), created.Load())
	count, err := env.notifications.UnreadCount(ctx, employerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

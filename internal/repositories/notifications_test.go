package repositories

import (
	"context"
	"testing"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_ReadState(t *testing.T) {
	dbCtx := newTestDb(t)
	f := seed(t, dbCtx)
	notifications := NewNotificationsRepository(dbCtx.DB)
	ctx := context.Background()
	userID := f.candidate.UserID

	batch := []models.Notification{
		{UserID: userID, Title: "first", Type: models.NotificationJobCreated, Data: map[string]any{"job_id": 1}},
		{UserID: userID, Title: "second", Type: models.NotificationApplicationStatus},
		{UserID: f.employer.UserID, Title: "other user", Type: models.NotificationApplication},
	}
	require.NoError(t, notifications.CreateBatch(ctx, batch))
	require.NoError(t, notifications.CreateBatch(ctx, nil))

	count, err := notifications.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	updated, err := notifications.MarkRead(ctx, f.employer.UserID, batch[0].ID)
	require.NoError(t, err)
	assert.False(t, updated, "foreign notification must not be touched")

	updated, err = notifications.MarkRead(ctx, userID, batch[0].ID)
	require.NoError(t, err)
	assert.True(t, updated)

	unread, err := notifications.ListByUser(ctx, userID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Title)

	all, err := notifications.ListByUser(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
	assert.EqualValues(t, 1, all[1].Data["job_id"])

	marked, err := notifications.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
}

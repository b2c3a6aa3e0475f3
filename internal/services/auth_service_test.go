package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp_CreatesCandidateProfile(t *testing.T) {
	env := newTestEnv(t)

	userID := env.signUp(t, "Ann@Mail.Test", models.RoleCandidate)

	profile := env.auth.GetCurrentUser(context.Background(), userID)
	require.NotNil(t, profile)
	assert.Equal(t, "ann@mail.test", profile.Email)

	candidate, err := env.candidates.GetCandidateProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, candidate.UserID)
}

func TestSignUp_DuplicateEmailLeavesSingleProfile(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "ann@mail.test", models.RoleCandidate)

	_, err := env.auth.SignUp(context.Background(), SignUpInput{
		Email: "ANN@mail.test", Password: "password123", FullName: "Other", Role: models.RoleEmployer,
	})
	assert.True(t, errors.Is(err, ErrConflict))

	var count int64
	require.NoError(t, env.db.DB.Model(&models.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignUp_RejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.SignUp(context.Background(), SignUpInput{
		Email: "not-an-email", Password: "short", FullName: "", Role: "admin",
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "ann@mail.test", models.RoleCandidate)

	_, err := env.auth.SignIn(context.Background(), "ann@mail.test", "wrong-password")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = env.auth.SignIn(context.Background(), "nobody@mail.test", "password123")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestGetSession_RotatesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "ann@mail.test", models.RoleCandidate)

	session, err := env.auth.SignIn(ctx, "ann@mail.test", "password123")
	require.NoError(t, err)

	refreshed, err := env.auth.GetSession(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

	_, err = env.auth.GetSession(ctx, session.RefreshToken)
	assert.True(t, errors.Is(err, ErrUnauthorized), "a used refresh token must not be accepted twice")

	require.NoError(t, env.auth.SignOut(ctx, refreshed.User.ID))
	_, err = env.auth.GetSession(ctx, refreshed.RefreshToken)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestPasswordReset_Flow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ann@mail.test", models.RoleCandidate)

	var token string
	require.NoError(t, env.bus.Subscribe(events.PasswordResetRequestedTopic, func(e events.PasswordResetRequested) {
		token = e.Token
	}))

	require.NoError(t, env.auth.ResetPassword(ctx, "nobody@mail.test"))
	assert.Empty(t, token)

	require.NoError(t, env.auth.ResetPassword(ctx, "ann@mail.test"))
	require.NotEmpty(t, token)

	env.settle(t)
	notifications, err := env.notifications.GetNotifications(ctx, userID, true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationPasswordReset, notifications[0].Type)
	assert.NotContains(t, notifications[0].Body, token, "reset codes are never stored")
	assert.NotContains(t, fmt.Sprint(notifications[0].Data), token)

	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, token, "new-password"))
	err = env.auth.ConfirmPasswordReset(ctx, token, "another-password")
	assert.True(t, errors.Is(err, ErrInvalidInput), "reset tokens are single use")

	_, err = env.auth.SignIn(ctx, "ann@mail.test", "password123")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = env.auth.SignIn(ctx, "ann@mail.test", "new-password")
	assert.NoError(t, err)
}

func TestPasswords_LongerThanBcryptAllowsAreInvalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, password := range []string{strings.Repeat("a", 80), strings.Repeat("ж", 40)} {
		_, err := env.auth.SignUp(ctx, SignUpInput{
			Email: "ann@mail.test", Password: password, FullName: "Ann", Role: models.RoleCandidate,
		})
		assert.True(t, errors.Is(err, ErrInvalidInput), "%d bytes", len(password))
	}

	err := env.auth.ConfirmPasswordReset(ctx, "any-token", strings.Repeat("a", 73))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.auth.SignUp(ctx, SignUpInput{
		Email: "ann@mail.test", Password: strings.Repeat("a", 72), FullName: "Ann", Role: models.RoleCandidate,
	})
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	userID := env.signUp(t, "ann@mail.test", models.RoleCandidate)

	name := "  Ann Smith "
	profile, err := env.auth.UpdateProfile(context.Background(), userID, UpdateProfileInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", profile.FullName)

	bad := "not a url"
	_, err = env.auth.UpdateProfile(context.Background(), userID, UpdateProfileInput{AvatarURL: &bad})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSignUp_LosingTheEmailRaceIsAConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "dev@mail.test", models.RoleCandidate)

	// the insert a concurrent sign-up would reach after both passed the existence check
	err := env.profiles.Add(ctx, &models.Profile{
		ID: uuid.NewString(), Email: "dev@mail.test", Role: models.RoleCandidate, PasswordHash: "x",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(dbError(err, "failed to create profile"), ErrConflict))

	_, err = env.auth.SignUp(ctx, SignUpInput{
		Email: "DEV@mail.test", Password: "password123", FullName: "Ann", Role: models.RoleCandidate,
	})
	assert.True(t, errors.Is(err, ErrConflict))
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const passwordResetTTL = time.Hour

type unitOfWork interface {
	Do(ctx context.Context, fn func(repos repositories.TxRepositories) error) error
}

type profileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

type SignUpInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	FullName string      `json:"full_name" validate:"required,max=200"`
	Role     models.Role `json:"role" validate:"required,oneof=candidate employer"`
	Phone    string      `json:"phone" validate:"max=32"`
}

type UpdateProfileInput struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type Session struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	User         *models.Profile `json:"user"`
}

type AuthService struct {
	uow        unitOfWork
	profiles   profileRepository
	issuer     *auth.Issuer
	refreshTTL time.Duration
	bus        EventBus.Bus
	now        func() time.Time
}

func NewAuthService(uow unitOfWork, profiles profileRepository, issuer *auth.Issuer,
	refreshTTL time.Duration, bus EventBus.Bus) *AuthService {

	return &AuthService{
		uow:        uow,
		profiles:   profiles,
		issuer:     issuer,
		refreshTTL: refreshTTL,
		bus:        bus,
		now:        time.Now,
	}
}

// SignUp creates the account and its role-specific row atomically, so a failure never leaves a half-created user.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes(input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        input.Email,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         input.Role,
		PasswordHash: hash,
	}

	var session *Session
	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		exists, err := repos.Profiles.ExistsByEmail(ctx, profile.Email)
		if err != nil {
			return dbError(err, "failed to check email")
		}
		if exists {
			return errors.Wrap(ErrConflict, "email is already registered")
		}

		if err := repos.Profiles.Add(ctx, profile); err != nil {
			return dbError(err, "failed to create profile")
		}

		if profile.Role == models.RoleCandidate {
			if err := repos.Candidates.AddProfile(ctx, &models.CandidateProfile{UserID: profile.ID}); err != nil {
				return dbError(err, "failed to create candidate profile")
			}
		}

		session, err = s.newSession(ctx, repos.Tokens, profile)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Infof("user %s signed up as %s", profile.ID, profile.Role)
	return session, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	profile, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, dbError(err, "failed to get profile")
	}
	if profile == nil || !auth.CheckPassword(profile.PasswordHash, password) {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).Warnf("failed sign in attempt for %q", email)
		return nil, errors.Wrap(ErrUnauthorized, "invalid email or password")
	}

	var session *Session
	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		session, err = s.newSession(ctx, repos.Tokens, profile)
		return err
	})
	return session, err
}

func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	return s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if err := repos.Tokens.RevokeAllRefreshTokens(ctx, userID); err != nil {
			return dbError(err, "failed to revoke refresh tokens")
		}
		return nil
	})
}

// GetCurrentUser returns nil when the user is unknown or cannot be loaded.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) *models.Profile {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to get current user: %v", err)
		return nil
	}
	return profile
}

// GetSession rotates the refresh token: the presented one is revoked and a fresh session is issued.
func (s *AuthService) GetSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, errors.Wrap(ErrUnauthorized, "refresh token is required")
	}

	var session *Session
	err := s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		stored, err := repos.Tokens.GetRefreshTokenByHash(ctx, auth.HashOpaqueToken(refreshToken))
		if err != nil {
			return dbError(err, "failed to get refresh token")
		}
		if stored == nil || stored.Revoked || !stored.ExpiresAt.After(s.now()) {
			return errors.Wrap(ErrUnauthorized, "session expired")
		}

		revoked, err := repos.Tokens.RevokeRefreshToken(ctx, stored.ID)
		if err != nil {
			return dbError(err, "failed to revoke refresh token")
		}
		if !revoked {
			return errors.Wrap(ErrUnauthorized, "session expired")
		}

		profile, err := repos.Profiles.GetByID(ctx, stored.UserID)
		if err != nil {
			return dbError(err, "failed to get profile")
		}
		if profile == nil {
			return errors.Wrap(ErrUnauthorized, "user no longer exists")
		}

		session, err = s.newSession(ctx, repos.Tokens, profile)
		return err
	})
	return session, err
}

// ResetPassword issues a one-hour reset token. Unknown emails succeed silently so account existence is not revealed.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	profile, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return dbError(err, "failed to get profile")
	}
	if profile == nil {
		log.Infof("password reset requested for unknown email %q", email)
		return nil
	}

	raw, hash, err := auth.GenerateOpaqueToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}

	reset := &models.PasswordReset{
		UserID:    profile.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(passwordResetTTL),
	}
	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if err := repos.Tokens.AddPasswordReset(ctx, reset); err != nil {
			return dbError(err, "failed to store password reset")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(events.PasswordResetRequestedTopic, events.PasswordResetRequested{
		UserID:    profile.ID,
		Email:     profile.Email,
		Token:     raw,
		ExpiresAt: reset.ExpiresAt,
	})
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return invalid("password must be at least 8 characters")
	}
	if err := checkPasswordBytes(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	return s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		reset, err := repos.Tokens.GetPasswordResetByHash(ctx, auth.HashOpaqueToken(token))
		if err != nil {
			return dbError(err, "failed to get password reset")
		}
		if reset == nil || reset.UsedAt != nil || !reset.ExpiresAt.After(s.now()) {
			return invalid("reset token is invalid or expired")
		}

		used, err := repos.Tokens.MarkPasswordResetUsed(ctx, reset.ID, s.now())
		if err != nil {
			return dbError(err, "failed to mark password reset as used")
		}
		if !used {
			return invalid("reset token is invalid or expired")
		}

		if err := repos.Profiles.UpdatePassword(ctx, reset.UserID, hash); err != nil {
			return dbError(err, "failed to update password")
		}
		if err := repos.Tokens.RevokeAllRefreshTokens(ctx, reset.UserID); err != nil {
			return dbError(err, "failed to revoke refresh tokens")
		}
		return nil
	})
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.Profile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		fields["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.AvatarURL != nil {
		fields["avatar_url"] = *input.AvatarURL
	}

	if len(fields) > 0 {
		if err := s.profiles.Update(ctx, userID, fields); err != nil {
			return nil, dbError(err, "failed to update profile")
		}
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get profile")
	}
	if profile == nil {
		return nil, notFound("profile")
	}
	return profile, nil
}

func (s *AuthService) newSession(ctx context.Context, tokens *repositories.Tokens, profile *models.Profile) (*Session, error) {
	access, expiresAt, err := s.issuer.MakeToken(profile.ID, profile.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	raw, hash, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	err = tokens.AddRefreshToken(ctx, &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.refreshTTL),
	})
	if err != nil {
		return nil, dbError(err, "failed to store refresh token")
	}

	return &Session{AccessToken: access, RefreshToken: raw, ExpiresAt: expiresAt, User: profile}, nil
}

func checkPasswordBytes(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return invalid("password must not exceed %d bytes", auth.MaxPasswordBytes)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type notificationRepository interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id uint) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type followerLookup interface {
	GetFollowersOfCompany(ctx context.Context, companyID uint) ([]string, error)
}

type companyEmployersLookup interface {
	GetByCompany(ctx context.Context, companyID uint) ([]models.Employer, error)
}

type telegramLinker interface {
	SetTelegramChatID(ctx context.Context, id string, chatID int64) error
}

// NotificationService turns domain events into stored notifications for the affected users.
type NotificationService struct {
	notifications notificationRepository
	followers     followerLookup
	employers     companyEmployersLookup
	profiles      telegramLinker
	bus           EventBus.Bus
}

func NewNotificationService(notifications notificationRepository, followers followerLookup,
	employers companyEmployersLookup, profiles telegramLinker, bus EventBus.Bus) (*NotificationService, error) {

	s := &NotificationService{
		notifications: notifications,
		followers:     followers,
		employers:     employers,
		profiles:      profiles,
		bus:           bus,
	}

	subscriptions := map[string]any{
		events.JobCreatedTopic:               s.onJobCreated,
		events.ApplicationSubmittedTopic:     s.onApplicationSubmitted,
		events.ApplicationStatusChangedTopic: s.onApplicationStatusChanged,
		events.InterviewUpdatedTopic:         s.onInterviewUpdated,
		events.ParticipantRespondedTopic:     s.onParticipantResponded,
		events.PasswordResetRequestedTopic:   s.onPasswordResetRequested,
	}
	// handlers publish NotificationCreated themselves, which a synchronous handler cannot do while
	// Publish holds the bus lock
	for topic, handler := range subscriptions {
		if err := bus.SubscribeAsync(topic, handler, false); err != nil {
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}

	return s, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, dbError(err, "failed to get notifications")
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id uint) error {
	updated, err := s.notifications.MarkRead(ctx, userID, id)
	if err != nil {
		return dbError(err, "failed to mark notification as read")
	}
	if !updated {
		return notFound("notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, dbError(err, "failed to mark notifications as read")
	}
	return count, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, dbError(err, "failed to count notifications")
	}
	return count, nil
}

func (s *NotificationService) LinkTelegram(ctx context.Context, userID string, chatID int64) error {
	if chatID == 0 {
		return invalid("chat_id is required")
	}
	if err := s.profiles.SetTelegramChatID(ctx, userID, chatID); err != nil {
		return dbError(err, "failed to link telegram chat")
	}
	return nil
}

func (s *NotificationService) onJobCreated(e events.JobCreated) {
	ctx := context.Background()
	userIDs, err := s.followers.GetFollowersOfCompany(ctx, e.CompanyID)
	if err != nil {
		_ = dbError(err, "failed to get company followers")
		return
	}

	s.store(ctx, lo.Map(userIDs, func(userID string, _ int) models.Notification {
		return models.Notification{
			UserID: userID,
			Title:  "New job",
			Body:   fmt.Sprintf("A company you follow posted %q", e.Title),
			Type:   models.NotificationJobCreated,
			Data:   map[string]any{"job_id": e.JobID, "company_id": e.CompanyID},
		}
	}))
}

func (s *NotificationService) onApplicationSubmitted(e events.ApplicationSubmitted) {
	ctx := context.Background()
	employers, err := s.employers.GetByCompany(ctx, e.CompanyID)
	if err != nil {
		_ = dbError(err, "failed to get company employers")
		return
	}

	s.store(ctx, lo.Map(employers, func(employer models.Employer, _ int) models.Notification {
		return models.Notification{
			UserID: employer.UserID,
			Title:  "New application",
			Body:   fmt.Sprintf("%s applied to %q", e.CandidateName, e.JobTitle),
			Type:   models.NotificationApplication,
			Data:   map[string]any{"application_id": e.ApplicationID, "job_id": e.JobID},
		}
	}))
}

func (s *NotificationService) onApplicationStatusChanged(e events.ApplicationStatusChanged) {
	s.store(context.Background(), []models.Notification{{
		UserID: e.CandidateUserID,
		Title:  "Application updated",
		Body:   fmt.Sprintf("Your application to %q is now %s", e.JobTitle, e.NewStatus),
		Type:   models.NotificationApplicationStatus,
		Data: map[string]any{
			"application_id": e.ApplicationID,
			"old_status":     e.OldStatus,
			"new_status":     e.NewStatus,
		},
	}})
}

func (s *NotificationService) onInterviewUpdated(e events.InterviewUpdated) {
	var body string
	switch e.Status {
	case models.InterviewRescheduled:
		body = fmt.Sprintf("Your interview for %q was moved to %s", e.JobTitle, e.StartTime.Format(time.RFC3339))
	case models.InterviewCanceled:
		body = fmt.Sprintf("Your interview for %q was canceled", e.JobTitle)
	case models.InterviewDone:
		body = fmt.Sprintf("Your interview for %q is complete", e.JobTitle)
	default:
		body = fmt.Sprintf("Your interview for %q was updated", e.JobTitle)
	}

	s.store(context.Background(), lo.Map(lo.Uniq(e.CandidateUserIDs), func(userID string, _ int) models.Notification {
		return models.Notification{
			UserID: userID,
			Title:  "Interview updated",
			Body:   body,
			Type:   models.NotificationInterviewUpdated,
			Data: map[string]any{
				"interview_id": e.InterviewID,
				"status":       e.Status,
				"start_time":   e.StartTime.Format(time.RFC3339),
			},
		}
	}))
}

func (s *NotificationService) onParticipantResponded(e events.ParticipantResponded) {
	ctx := context.Background()
	employers, err := s.employers.GetByCompany(ctx, e.CompanyID)
	if err != nil {
		_ = dbError(err, "failed to get company employers")
		return
	}

	s.store(ctx, lo.Map(employers, func(employer models.Employer, _ int) models.Notification {
		return models.Notification{
			UserID: employer.UserID,
			Title:  "Interview response",
			Body:   fmt.Sprintf("%s %s the interview invitation", e.CandidateName, e.Status),
			Type:   models.NotificationInterviewResponse,
			Data: map[string]any{
				"interview_id":   e.InterviewID,
				"participant_id": e.ParticipantID,
				"status":         e.Status,
			},
		}
	}))
}

// onPasswordResetRequested records the request only; the code itself is never stored.
func (s *NotificationService) onPasswordResetRequested(e events.PasswordResetRequested) {
	s.store(context.Background(), []models.Notification{{
		UserID: e.UserID,
		Title:  "Password reset",
		Body:   fmt.Sprintf("A password reset was requested. The code was sent to your linked Telegram chat and expires at %s.", e.ExpiresAt.Format(time.RFC3339)),
		Type:   models.NotificationPasswordReset,
		Data:   map[string]any{"expires_at": e.ExpiresAt.Format(time.RFC3339)},
	}})
}

func (s *NotificationService) store(ctx context.Context, notifications []models.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		_ = dbError(err, "failed to store notifications")
		return
	}
	publishNotifications(s.bus, notifications)
}

// publishNotifications announces notifications that are already committed.
func publishNotifications(bus EventBus.Bus, notifications []models.Notification) {
	for _, notification := range notifications {
		metrics.NotificationsCreated.WithLabelValues(string(notification.Type)).Inc()
		bus.Publish(events.NotificationCreatedTopic, events.NotificationCreated{Notification: notification})
	}
	log.Debugf("%d notifications created", len(notifications))
}

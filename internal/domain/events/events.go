package events

import (
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
)

const (
	JobCreatedTopic               = "JobCreatedEvent"
	ApplicationSubmittedTopic     = "ApplicationSubmittedEvent"
	ApplicationStatusChangedTopic = "ApplicationStatusChangedEvent"
	InterviewScheduledTopic       = "InterviewScheduledEvent"
	InterviewUpdatedTopic         = "InterviewUpdatedEvent"
	ParticipantRespondedTopic     = "ParticipantRespondedEvent"
	PasswordResetRequestedTopic   = "PasswordResetRequestedEvent"
	NotificationCreatedTopic      = "NotificationCreatedEvent"
)

type JobCreated struct {
	JobID     uint
	CompanyID uint
	Title     string
}

type ApplicationSubmitted struct {
	ApplicationID uint
	JobID         uint
	CompanyID     uint
	JobTitle      string
	CandidateName string
}

type ApplicationStatusChanged struct {
	ApplicationID   uint
	CandidateUserID string
	JobTitle        string
	OldStatus       models.ApplicationStatus
	NewStatus       models.ApplicationStatus
}

// InterviewScheduled is published once per created interview after the scheduling transaction commits.
type InterviewScheduled struct {
	InterviewID     uint
	ApplicationID   uint
	JobID           uint
	CompanyID       uint
	CandidateUserID string
	StartTime       time.Time
	EndTime         time.Time
}

type InterviewUpdated struct {
	InterviewID      uint
	JobTitle         string
	Status           models.InterviewStatus
	StartTime        time.Time
	CandidateUserIDs []string
}

type ParticipantResponded struct {
	InterviewID   uint
	ParticipantID uint
	CompanyID     uint
	CandidateName string
	Status        models.ParticipantStatus
}

type PasswordResetRequested struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

type NotificationCreated struct {
	Notification models.Notification
}

package models

import "time"

type NotificationType string

const (
	NotificationJobCreated         NotificationType = "job_created"
	NotificationApplication        NotificationType = "new_application"
	NotificationApplicationStatus  NotificationType = "application_status"
	NotificationInterviewScheduled NotificationType = "interview_scheduled"
	NotificationInterviewUpdated   NotificationType = "interview_updated"
	NotificationInterviewResponse  NotificationType = "interview_response"
	NotificationPasswordReset      NotificationType = "password_reset"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"size:36;not null;index" json:"user_id"`
	Title     string           `gorm:"not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	Type      NotificationType `gorm:"not null" json:"type"`
	Data      map[string]any   `gorm:"serializer:json" json:"data"`
	IsRead    bool             `gorm:"not null;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

package models

import "time"

type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusReviewing   ApplicationStatus = "reviewing"
	StatusInterview   ApplicationStatus = "interview"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusOffered     ApplicationStatus = "offered"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
)

var ApplicationStatuses = []ApplicationStatus{
	StatusApplied, StatusReviewing, StatusInterview, StatusInterviewed,
	StatusOffered, StatusAccepted, StatusRejected,
}

type JobApplication struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	JobID       uint              `gorm:"not null;uniqueIndex:idx_application_job_candidate" json:"job_id"`
	Job         *Job              `json:"job,omitempty"`
	CandidateID uint              `gorm:"not null;uniqueIndex:idx_application_job_candidate" json:"candidate_id"`
	Candidate   *CandidateProfile `json:"candidate,omitempty"`
	Status      ApplicationStatus `gorm:"not null;index" json:"status"`
	AppliedAt   time.Time         `json:"applied_at"`
	InterviewID *uint             `gorm:"index" json:"interview_id"`
	CoverLetter string            `gorm:"type:text" json:"cover_letter"`
	ResumeURL   string            `json:"resume_url"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CandidateRow is the flattened shape an employer's candidate list is filtered on.
type CandidateRow struct {
	ApplicationID uint              `json:"application_id"`
	CandidateID   uint              `json:"candidate_id"`
	JobID         uint              `json:"job_id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	AvatarURL     string            `json:"avatar_url"`
	Position      string            `json:"position"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"applied_at"`
	InterviewID   *uint             `json:"interview_id"`
}

package models

import "time"

type InterviewType string

const (
	InterviewOnline  InterviewType = "online"
	InterviewOffline InterviewType = "offline"
)

type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewRescheduled InterviewStatus = "rescheduled"
	InterviewDone        InterviewStatus = "done"
	InterviewCanceled    InterviewStatus = "canceled"
)

// Open reports whether the interview still lies ahead of its participants.
func (s InterviewStatus) Open() bool {
	return s == InterviewScheduled || s == InterviewRescheduled
}

type ParticipantStatus string

const (
	ParticipantInvited   ParticipantStatus = "invited"
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantDeclined  ParticipantStatus = "declined"
	ParticipantNoShow    ParticipantStatus = "no_show"
)

type Interview struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	JobID        uint                   `gorm:"not null;index" json:"job_id"`
	Job          *Job                   `json:"job,omitempty"`
	CompanyID    uint                   `gorm:"not null;index" json:"company_id"`
	StartTime    time.Time              `gorm:"not null;index" json:"start_time"`
	EndTime      time.Time              `gorm:"not null" json:"end_time"`
	Timezone     string                 `json:"timezone"`
	Type         InterviewType          `gorm:"not null" json:"type"`
	MeetingLink  string                 `json:"meeting_link"`
	Location     string                 `json:"location"`
	Status       InterviewStatus        `gorm:"not null;index" json:"status"`
	Note         string                 `gorm:"type:text" json:"note"`
	Participants []InterviewParticipant `json:"participants,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type InterviewParticipant struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	InterviewID       uint              `gorm:"not null;index" json:"interview_id"`
	Interview         *Interview        `json:"interview,omitempty"`
	ApplicationID     uint              `gorm:"not null;index" json:"application_id"`
	CandidateID       uint              `gorm:"not null;index" json:"candidate_id"`
	Candidate         *CandidateProfile `json:"candidate,omitempty"`
	ParticipantStatus ParticipantStatus `gorm:"not null" json:"participant_status"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

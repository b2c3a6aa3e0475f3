package models

import "time"

type CandidateProfile struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             string    `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	User               *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Headline           string    `json:"headline"`
	Summary            string    `gorm:"type:text" json:"summary"`
	YearsOfExperience  int       `json:"years_of_experience"`
	DesiredPosition    string    `json:"desired_position"`
	DesiredJobType     JobType   `json:"desired_job_type"`
	DesiredSalaryMin   *int64    `json:"desired_salary_min"`
	DesiredSalaryMax   *int64    `json:"desired_salary_max"`
	PreferredLocations []string  `gorm:"serializer:json" json:"preferred_locations"`
	ResumeURL          string    `json:"resume_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CandidateExperience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CandidateID uint       `gorm:"not null;index" json:"candidate_id"`
	CompanyName string     `gorm:"not null" json:"company_name"`
	Position    string     `gorm:"not null" json:"position"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `json:"is_current"`
	Description string     `gorm:"type:text" json:"description"`
}

type CandidateEducation struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CandidateID  uint       `gorm:"not null;index" json:"candidate_id"`
	School       string     `gorm:"not null" json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

type Skill struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Category string `json:"category"`
}

type CandidateSkill struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CandidateID uint   `gorm:"not null;uniqueIndex:idx_candidate_skill" json:"candidate_id"`
	SkillID     uint   `gorm:"not null;uniqueIndex:idx_candidate_skill" json:"skill_id"`
	Skill       *Skill `json:"skill,omitempty"`
	Level       string `json:"level"`
}

type SavedJob struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CandidateID uint      `gorm:"not null;uniqueIndex:idx_saved_job" json:"candidate_id"`
	JobID       uint      `gorm:"not null;uniqueIndex:idx_saved_job" json:"job_id"`
	Job         *Job      `json:"job,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

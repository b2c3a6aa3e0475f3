package models

import "time"

type JobType string

const (
	FullTime   JobType = "full_time"
	PartTime   JobType = "part_time"
	Contract   JobType = "contract"
	Internship JobType = "internship"
	Freelance  JobType = "freelance"
)

type ExperienceLevel string

const (
	EntryLevel  ExperienceLevel = "entry"
	JuniorLevel ExperienceLevel = "junior"
	MiddleLevel ExperienceLevel = "middle"
	SeniorLevel ExperienceLevel = "senior"
	LeadLevel   ExperienceLevel = "lead"
)

type Job struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CompanyID           uint            `gorm:"not null;index" json:"company_id"`
	Company             *Company        `json:"company,omitempty"`
	CreatedByEmployerID uint            `gorm:"not null;index" json:"created_by_employer_id"`
	Title               string          `gorm:"not null" json:"title"`
	Description         string          `gorm:"type:text" json:"description"`
	Requirements        string          `gorm:"type:text" json:"requirements"`
	Location            string          `json:"location"`
	JobType             JobType         `gorm:"index" json:"job_type"`
	ExperienceLevel     ExperienceLevel `gorm:"index" json:"experience_level"`
	SalaryMin           *int64          `json:"salary_min"`
	SalaryMax           *int64          `json:"salary_max"`
	SalaryCurrency      string          `json:"salary_currency"`
	IsActive            bool            `gorm:"not null;index" json:"is_active"`
	Deadline            *time.Time      `json:"deadline"`
	ViewCount           int64           `gorm:"not null;default:0" json:"view_count"`
	PublishedAt         time.Time       `gorm:"index" json:"published_at"`
	Skills              []Skill         `gorm:"many2many:job_skills" json:"skills,omitempty"`
	Tags                []JobTag        `json:"tags,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (j Job) AcceptsApplications(now time.Time) bool {
	return j.IsActive && (j.Deadline == nil || j.Deadline.After(now))
}

type JobTag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	JobID uint   `gorm:"not null;index" json:"job_id"`
	Tag   string `gorm:"not null" json:"tag"`
}

type JobStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	TotalApplied int64 `json:"totalApplied"`
	TotalViews   int64 `json:"totalViews"`
}

package models

import "time"

type Company struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `json:"logo_url"`
	Website     string    `json:"website"`
	Location    string    `json:"location"`
	Industry    string    `json:"industry"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Employer links a profile to the company it recruits for.
type Employer struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	UserID    string   `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	Profile   *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CompanyID uint     `gorm:"not null;index" json:"company_id"`
	Company   *Company `json:"company,omitempty"`
	Position  string   `json:"position"`
}

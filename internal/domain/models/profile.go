package models

import "time"

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleEmployer
}

// Profile is the account row every user owns, candidate or employer.
type Profile struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone"`
	AvatarURL      string    `json:"avatar_url"`
	Role           Role      `gorm:"not null" json:"role"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	TelegramChatID *int64    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;index"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null"`
	CreatedAt time.Time
}

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"size:36;not null;index"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

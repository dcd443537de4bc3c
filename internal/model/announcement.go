package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnnouncementInfo      = "INFO"
	AnnouncementAttention = "ATTENTION"
	AnnouncementUrgent    = "URGENT"
)

// Announcement is a staff-only banner shown in the back office until it expires
type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Kind      string    `gorm:"type:varchar(20);not null;default:'INFO'" json:"kind"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	Creator   *User     `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Visible reports whether the announcement should still be displayed at now
func (a *Announcement) Visible(now time.Time) bool {
	return a.IsActive && a.ExpiresAt.After(now)
}

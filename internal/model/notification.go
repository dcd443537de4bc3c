package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationArticleStatus   = "ARTICLE_STATUS"
	NotificationReviewRequested = "REVIEW_REQUESTED"
	NotificationSystem          = "SYSTEM"
)

// Notification is a per-user message, also pushed live over the websocket hub
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string    `gorm:"type:varchar(30);not null;index" json:"kind"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Link      string    `gorm:"type:text" json:"link,omitempty"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

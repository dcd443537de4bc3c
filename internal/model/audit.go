package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateArticle         = "CREATE_ARTICLE"
	ActionUpdateArticle         = "UPDATE_ARTICLE"
	ActionDeleteArticle         = "DELETE_ARTICLE"
	ActionChangeArticleStatus   = "CHANGE_ARTICLE_STATUS"
	ActionAssignReviewer        = "ASSIGN_REVIEWER"
	ActionToggleUserStatus      = "TOGGLE_USER_STATUS"
	ActionChangeUserRole        = "CHANGE_USER_ROLE"
	ActionCreateAnnouncement    = "CREATE_ANNOUNCEMENT"
	ActionUpdateAnnouncement    = "UPDATE_ANNOUNCEMENT"
	ActionDeleteAnnouncement    = "DELETE_ANNOUNCEMENT"
	ActionExtendAnnouncement    = "EXTEND_ANNOUNCEMENT"
	ActionBroadcastNotification = "BROADCAST_NOTIFICATION"
	ActionCreateGame            = "CREATE_GAME"
	ActionDeleteGame            = "DELETE_GAME"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for automated changes
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

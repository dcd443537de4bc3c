package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/permission"
	"gorm.io/gorm"
)

// User represents an account: readers, authors and staff alike
type User struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username    string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email       string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string          `gorm:"type:varchar(255);not null" json:"-"`
	Role        permission.Role `gorm:"type:varchar(20);not null;default:'USER';index" json:"role"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	Avatar      string          `gorm:"type:text" json:"avatar,omitempty"`
	Bio         string          `gorm:"type:text" json:"bio,omitempty"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Principal is the permission view of the account
func (u *User) Principal() permission.Principal {
	return permission.Principal{ID: u.ID.String(), Role: u.Role}
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/permission"
	"gorm.io/gorm"
)

// Article is an editorial piece moving through the review workflow
type Article struct {
	ID          uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string                   `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string                   `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Content     string                   `gorm:"type:text;not null" json:"content"` // CommonMark source
	HeroImage   string                   `gorm:"type:text" json:"hero_image,omitempty"`
	Status      permission.ArticleStatus `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	UserID      uuid.UUID                `gorm:"type:uuid;not null;index" json:"user_id"` // author
	Author      *User                    `gorm:"foreignKey:UserID" json:"author,omitempty"`
	ReviewerID  *uuid.UUID               `gorm:"type:uuid;index" json:"reviewer_id"`
	Reviewer    *User                    `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Games       []Game                   `gorm:"many2many:article_games;" json:"games,omitempty"`
	PublishedAt *time.Time               `gorm:"index" json:"published_at"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	DeletedAt   gorm.DeletedAt           `gorm:"index" json:"-"`
}

// Ref is the ownership projection consumed by the permission predicates
func (a *Article) Ref() *permission.ArticleRef {
	if a == nil {
		return nil
	}
	return &permission.ArticleRef{UserID: a.UserID.String(), Status: a.Status}
}

// Approval actions recorded in the article history
const (
	ApprovalActionSubmit         = "SUBMIT"
	ApprovalActionPublish        = "PUBLISH"
	ApprovalActionRequestChanges = "REQUEST_CHANGES"
	ApprovalActionArchive        = "ARCHIVE"
	ApprovalActionAssignReviewer = "ASSIGN_REVIEWER"
	ApprovalActionDelete         = "DELETE"
)

// ArticleApproval is one entry of an article's editorial history
type ArticleApproval struct {
	ID         uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ArticleID  uuid.UUID                `gorm:"type:uuid;not null;index" json:"article_id"`
	FromStatus permission.ArticleStatus `gorm:"type:varchar(30);not null" json:"from_status"`
	ToStatus   permission.ArticleStatus `gorm:"type:varchar(30);not null" json:"to_status"`
	Action     string                   `gorm:"type:varchar(30);not null" json:"action"`
	Comment    string                   `gorm:"type:text" json:"comment"`
	ActorID    uuid.UUID                `gorm:"type:uuid;not null;index" json:"actor_id"`
	Actor      *User                    `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	CreatedAt  time.Time                `gorm:"index" json:"created_at"`
}

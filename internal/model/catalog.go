package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Company is a game developer and/or publisher
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Country     string    `gorm:"type:varchar(100)" json:"country,omitempty"`
	Website     string    `gorm:"type:text" json:"website,omitempty"`
	IsDeveloper bool      `gorm:"default:false" json:"is_developer"`
	IsPublisher bool      `gorm:"default:false" json:"is_publisher"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Platform is a console, handheld or PC storefront
type Platform struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Manufacturer string     `gorm:"type:varchar(100)" json:"manufacturer,omitempty"`
	ReleaseDate  *time.Time `json:"release_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Game is a catalog entry articles can be attached to
type Game struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Genre       string          `gorm:"type:varchar(50);index" json:"genre,omitempty"`
	CoverImage  string          `gorm:"type:text" json:"cover_image,omitempty"`
	ReleaseDate *time.Time      `json:"release_date,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	DeveloperID *uuid.UUID      `gorm:"type:uuid;index" json:"developer_id"`
	Developer   *Company        `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
	PublisherID *uuid.UUID      `gorm:"type:uuid;index" json:"publisher_id"`
	Publisher   *Company        `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	Platforms   []Platform      `gorm:"many2many:game_platforms;" json:"platforms,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

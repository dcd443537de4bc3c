package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/model"
	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	ListVisible(ctx context.Context, now time.Time) ([]model.Announcement, error)
	ListAll(ctx context.Context) ([]model.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	return GetDB(ctx, r.db).Omit("Creator").Create(a).Error
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) error {
	return GetDB(ctx, r.db).Omit("Creator").Save(a).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Announcement{}).Error
}

func (r *announcementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	var a model.Announcement
	if err := GetDB(ctx, r.db).Preload("Creator").First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) ListVisible(ctx context.Context, now time.Time) ([]model.Announcement, error) {
	var list []model.Announcement
	if err := GetDB(ctx, r.db).Preload("Creator").
		Where("is_active = ? AND expires_at > ?", true, now).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *announcementRepository) ListAll(ctx context.Context) ([]model.Announcement, error) {
	var list []model.Announcement
	if err := GetDB(ctx, r.db).Preload("Creator").Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

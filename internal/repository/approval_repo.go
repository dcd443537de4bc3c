package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/model"
	"gorm.io/gorm"
)

// ApprovalRepository stores the editorial history of articles
type ApprovalRepository interface {
	Create(ctx context.Context, entry *model.ArticleApproval) error
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.ArticleApproval, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, entry *model.ArticleApproval) error {
	return GetDB(ctx, r.db).Omit("Actor").Create(entry).Error
}

func (r *approvalRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.ArticleApproval, error) {
	var entries []model.ArticleApproval
	if err := GetDB(ctx, r.db).Preload("Actor").
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

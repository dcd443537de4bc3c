package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"gorm.io/gorm"
)

// ArticleFilter narrows article listings; zero values mean "any"
type ArticleFilter struct {
	Status     permission.ArticleStatus
	AuthorID   *uuid.UUID
	ReviewerID *uuid.UUID
	GameID     *uuid.UUID
	Search     string
}

type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Article, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*model.Article, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter ArticleFilter, page, limit int) ([]model.Article, int64, error)
	ReplaceGames(ctx context.Context, article *model.Article, gameIDs []uuid.UUID) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *model.Article) error {
	return GetDB(ctx, r.db).Omit("Author", "Reviewer", "Games").Create(article).Error
}

func (r *articleRepository) Update(ctx context.Context, article *model.Article) error {
	return GetDB(ctx, r.db).Omit("Author", "Reviewer", "Games").Save(article).Error
}

func (r *articleRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Article{}).Error
}

func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := GetDB(ctx, r.db).
		Preload("Author").Preload("Reviewer").Preload("Games").
		First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends
func (r *articleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := lockedDB(ctx, r.db).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindPublishedBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var article model.Article
	if err := GetDB(ctx, r.db).
		Preload("Author").Preload("Games").
		Where("slug = ? AND status = ?", slug, permission.StatusPublished).
		First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	// soft-deleted rows still hold the unique index
	query := GetDB(ctx, r.db).Unscoped().Model(&model.Article{}).Select("id").Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var found model.Article
	err := query.Take(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter, page, limit int) ([]model.Article, int64, error) {
	var articles []model.Article
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Article{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != nil {
		query = query.Where("user_id = ?", *filter.AuthorID)
	}
	if filter.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filter.ReviewerID)
	}
	if filter.GameID != nil {
		query = query.Where("id IN (?)", GetDB(ctx, r.db).Table("article_games").
			Select("article_id").Where("game_id = ?", *filter.GameID))
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Status == permission.StatusPublished {
		order = "published_at DESC"
	}

	offset := (page - 1) * limit
	if err := query.Preload("Author").Preload("Reviewer").Preload("Games").
		Order(order).Offset(offset).Limit(limit).Find(&articles).Error; err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *articleRepository) ReplaceGames(ctx context.Context, article *model.Article, gameIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)
	games := []model.Game{}
	if len(gameIDs) > 0 {
		if err := db.Where("id IN ?", gameIDs).Find(&games).Error; err != nil {
			return err
		}
	}
	if err := db.Model(article).Association("Games").Replace(games); err != nil {
		return err
	}
	article.Games = games
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountArticlesByStatus(ctx context.Context) (map[permission.ArticleStatus]int64, error)
	CountPublished(ctx context.Context, start, end time.Time) (int64, error)
	CountTransitions(ctx context.Context, to permission.ArticleStatus, start, end time.Time) (int64, error)
	CountPendingWithoutReviewer(ctx context.Context) (int64, error)
	TopGames(ctx context.Context, start, end time.Time, limit int) ([]model.GameRanking, error)
	TopAuthors(ctx context.Context, start, end time.Time, limit int) ([]model.AuthorRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

// CountArticlesByStatus skips soft-deleted rows, so DELETED is normally absent
func (r *statisticsRepository) CountArticlesByStatus(ctx context.Context) (map[permission.ArticleStatus]int64, error) {
	var rows []struct {
		Status permission.ArticleStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Article{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count articles by status: %w", err)
	}

	counts := make(map[permission.ArticleStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *statisticsRepository) CountPublished(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("status = ? AND published_at >= ? AND published_at <= ?", permission.StatusPublished, start, end).
		Count(&count).Error
	return count, err
}

// CountTransitions counts history rows moving an article into to
func (r *statisticsRepository) CountTransitions(ctx context.Context, to permission.ArticleStatus, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ArticleApproval{}).
		Where("to_status = ? AND created_at >= ? AND created_at <= ?", to, start, end).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountPendingWithoutReviewer(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("status = ? AND reviewer_id IS NULL", permission.StatusPendingApproval).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) TopGames(ctx context.Context, start, end time.Time, limit int) ([]model.GameRanking, error) {
	var rankings []model.GameRanking
	if err := r.db.WithContext(ctx).Table("article_games").
		Select("games.id as game_id, games.title as title, COUNT(articles.id) as articles").
		Joins("JOIN games ON games.id = article_games.game_id").
		Joins("JOIN articles ON articles.id = article_games.article_id").
		Where("articles.deleted_at IS NULL AND games.deleted_at IS NULL").
		Where("articles.status = ? AND articles.published_at >= ? AND articles.published_at <= ?", permission.StatusPublished, start, end).
		Group("games.id, games.title").
		Order("articles DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top games: %w", err)
	}
	return rankings, nil
}

func (r *statisticsRepository) TopAuthors(ctx context.Context, start, end time.Time, limit int) ([]model.AuthorRanking, error) {
	var rankings []model.AuthorRanking
	if err := r.db.WithContext(ctx).Table("articles").
		Select("users.id as user_id, users.username as username, COUNT(articles.id) as articles").
		Joins("JOIN users ON users.id = articles.user_id").
		Where("articles.deleted_at IS NULL").
		Where("articles.status = ? AND articles.published_at >= ? AND articles.published_at <= ?", permission.StatusPublished, start, end).
		Group("users.id, users.username").
		Order("articles DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top authors: %w", err)
	}
	return rankings, nil
}

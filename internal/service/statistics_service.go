package service

import (
	"context"
	"time"

	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
)

const topRankingSize = 5

type StatisticsService interface {
	// GetStatistics summarises editorial activity between startDate and endDate.
	// Zero dates default to the current month.
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
	now  func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo, now: time.Now}
}

func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (*model.StatisticsResponse, error) {
	now := s.now()
	if startDate.IsZero() {
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	if endDate.IsZero() {
		endDate = now
	}
	if endDate.Before(startDate) {
		return nil, bizerror.BadParam("end_date must not be before start_date")
	}

	res := &model.StatisticsResponse{TimeRangeStartDate: startDate, TimeRangeEndDate: endDate}

	byStatus, err := s.repo.CountArticlesByStatus(ctx)
	if err != nil {
		return nil, err
	}
	res.ArticlesByStatus = make(map[permission.ArticleStatus]int64, len(permission.Statuses()))
	for _, st := range permission.Statuses() {
		if st == permission.StatusDeleted {
			continue
		}
		res.ArticlesByStatus[st] = byStatus[st]
	}

	if res.PublishedInRange, err = s.repo.CountPublished(ctx, startDate, endDate); err != nil {
		return nil, err
	}
	if res.SubmittedInRange, err = s.repo.CountTransitions(ctx, permission.StatusPendingApproval, startDate, endDate); err != nil {
		return nil, err
	}
	if res.AwaitingReviewer, err = s.repo.CountPendingWithoutReviewer(ctx); err != nil {
		return nil, err
	}
	if res.TopGames, err = s.repo.TopGames(ctx, startDate, endDate, topRankingSize); err != nil {
		return nil, err
	}
	if res.TopAuthors, err = s.repo.TopAuthors(ctx, startDate, endDate, topRankingSize); err != nil {
		return nil, err
	}
	return res, nil
}

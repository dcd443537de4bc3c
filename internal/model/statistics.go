package model

import (
	"time"

	"github.com/soonland/nexus-gaming/internal/permission"
)

// StatisticsResponse aggregates editorial activity over a time range
type StatisticsResponse struct {
	ArticlesByStatus   map[permission.ArticleStatus]int64 `json:"articles_by_status"`
	PublishedInRange   int64                              `json:"published_in_range"`
	SubmittedInRange   int64                              `json:"submitted_in_range"`
	AwaitingReviewer   int64                              `json:"awaiting_reviewer"`
	TopGames           []GameRanking                      `json:"top_games"`
	TopAuthors         []AuthorRanking                    `json:"top_authors"`
	TimeRangeStartDate time.Time                          `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time                          `json:"time_range_end_date"`
}

// GameRanking is a game ranked by the number of articles published about it
type GameRanking struct {
	GameID   string `json:"game_id"`
	Title    string `json:"title"`
	Articles int64  `json:"articles"`
}

// AuthorRanking is an author ranked by published articles
type AuthorRanking struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Articles int64  `json:"articles"`
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/pkg/response"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	statsGroup := router.Group("/api/admin/statistics", requireAuth)
	{
		statsGroup.GET("", middleware.RequireRole(permission.CanReviewArticles), h.GetStatistics)
	}
}

func parseDate(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, bizerror.BadParam("invalid %s format, expected RFC3339", key)
	}
	return t, nil
}

// @Summary      Get Dashboard Statistics
// @Description  Article counts per status, publication and submission volume, and top games and authors bounded by time
// @Tags         statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339), defaults to the first day of the month"
// @Param        end_date   query string false "End Date (RFC3339), defaults to now"
// @Success      200 {object} response.Response{data=model.StatisticsResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      403 {object} response.Response
// @Security     BearerAuth
// @Router       /api/admin/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	startDate, err := parseDate(c, "start_date")
	if err != nil {
		_ = c.Error(err)
		return
	}
	endDate, err := parseDate(c, "end_date")
	if err != nil {
		_ = c.Error(err)
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

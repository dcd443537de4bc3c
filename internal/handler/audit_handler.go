package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/pkg/pagination"
	"github.com/soonland/nexus-gaming/pkg/response"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group := router.Group("/api/admin/audit-logs", requireAuth, middleware.RequireMinRole(permission.RoleAdmin)) // Protect history logs
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves strictly paginated records with Users pre-loaded joining details
// @Summary      Get audit logs
// @Description  Retrieves list of audit logs securely mapping User interaction history
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action     query     string  false  "Action filter, e.g. CHANGE_ARTICLE_STATUS"
// @Param        entity_id  query     string  false  "Entity filter"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Page{items=[]service.AuditLogResponse}}
// @Router       /api/admin/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	pg := pagination.Parse(c)
	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), c.Query("action"), c.Query("entity_id"), pg.Page, pg.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, logs, total, pg.Page, pg.Limit))
}

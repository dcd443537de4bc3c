package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/pkg/response"
)

type AnnouncementHandler struct {
	announcementService service.AnnouncementService
}

func NewAnnouncementHandler(announcementService service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

func (h *AnnouncementHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group := router.Group("/api/admin/announcements", requireAuth)
	manage := middleware.RequireRole(permission.CanManageAnnouncements)
	{
		group.GET("", middleware.RequireRole(permission.CanViewAnnouncements), h.List)
		group.POST("", manage, h.Create)
		group.PUT("/:id", manage, h.Update)
		group.DELETE("/:id", manage, h.Delete)
		group.PATCH("/:id/extend", manage, h.Extend)
	}
}

// List handles GET /api/admin/announcements
// @Summary      Staff announcements
// @Description  Visible announcements; all=true also returns expired and inactive ones to managers
// @Tags         announcements
// @Produce      json
// @Security     BearerAuth
// @Param        all  query     bool  false  "Include hidden announcements"
// @Success      200  {object}  response.Response{data=[]service.AnnouncementResponse}
// @Router       /api/admin/announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("all"))
	list, err := h.announcementService.List(c.Request.Context(), middleware.MustPrincipal(c), all)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// Create handles POST /api/admin/announcements
// @Summary      Create an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAnnouncementRequest  true  "Announcement"
// @Success      201      {object}  response.Response{data=service.AnnouncementResponse}
// @Router       /api/admin/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.announcementService.Create(c.Request.Context(), middleware.MustPrincipal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// Update handles PUT /api/admin/announcements/:id
// @Summary      Update an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Announcement ID"
// @Param        payload  body      service.UpdateAnnouncementRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=service.AnnouncementResponse}
// @Router       /api/admin/announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req service.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.announcementService.Update(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Delete handles DELETE /api/admin/announcements/:id
// @Summary      Delete an announcement
// @Tags         announcements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Announcement ID"
// @Success      200  {object}  response.Response
// @Router       /api/admin/announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.announcementService.Delete(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Announcement deleted successfully"))
}

// Extend handles PATCH /api/admin/announcements/:id/extend
// @Summary      Extend an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Announcement ID"
// @Param        payload  body      service.ExtendAnnouncementRequest  true  "Days to add"
// @Success      200      {object}  response.Response{data=service.AnnouncementResponse}
// @Router       /api/admin/announcements/{id}/extend [patch]
func (h *AnnouncementHandler) Extend(c *gin.Context) {
	var req service.ExtendAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.announcementService.Extend(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

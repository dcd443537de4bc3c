package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/internal/websocket"
	"github.com/soonland/nexus-gaming/pkg/pagination"
	"github.com/soonland/nexus-gaming/pkg/response"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	hub                 *websocket.Hub
	tokens              websocket.TokenParser
	states              websocket.AccountStates
}

// NewNotificationHandler wires the REST routes; hub may be nil to disable /ws
func NewNotificationHandler(notificationService service.NotificationService, hub *websocket.Hub, tokens websocket.TokenParser, states websocket.AccountStates) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, hub: hub, tokens: tokens, states: states}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group := router.Group("/api/notifications", requireAuth)
	{
		group.GET("", h.List)
		group.GET("/unread-count", h.UnreadCount)
		group.PATCH("/read-all", h.MarkAllRead)
		group.PATCH("/:id/read", h.MarkRead)
	}

	router.POST("/api/admin/notifications/broadcast", requireAuth,
		middleware.RequireRole(permission.CanBroadcastNotifications), h.Broadcast)

	if h.hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(h.hub, c, h.tokens, h.states)
		})
	}
}

// List handles GET /api/notifications
// @Summary      Own notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Only unread"
// @Param        page    query     int   false  "Page number (default 1)"
// @Param        limit   query     int   false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page{items=[]service.NotificationResponse}}
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	pg := pagination.Parse(c)
	unread, _ := strconv.ParseBool(c.Query("unread"))
	list, total, err := h.notificationService.List(c.Request.Context(), middleware.MustPrincipal(c), unread, pg.Page, pg.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, list, total, pg.Page, pg.Limit))
}

// UnreadCount handles GET /api/notifications/unread-count
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), middleware.MustPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"unread": count}))
}

// MarkRead handles PATCH /api/notifications/:id/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Notification marked as read"))
}

// MarkAllRead handles PATCH /api/notifications/read-all
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.MustPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": n}))
}

// Broadcast handles POST /api/admin/notifications/broadcast
// @Summary      Notify every active account
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BroadcastRequest  true  "Message"
// @Success      201      {object}  response.Response{data=service.BroadcastResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/admin/notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req service.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.notificationService.Broadcast(c.Request.Context(), middleware.MustPrincipal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

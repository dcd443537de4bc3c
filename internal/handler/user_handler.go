package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/pkg/pagination"
	"github.com/soonland/nexus-gaming/pkg/response"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := router.Group("/api/users", requireAuth)
	{
		users.GET("", middleware.RequireMinRole(permission.RoleAdmin), h.ListUsers)
		users.PATCH("/me", h.UpdateProfile)
		users.GET("/:id", h.GetUser)
		users.PATCH("/:id/status", middleware.RequireMinRole(permission.RoleAdmin), h.ToggleStatus)
		users.PATCH("/:id/role", middleware.RequireMinRole(permission.RoleAdmin), h.ChangeRole)
	}
}

// ListUsers handles GET /api/users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "Role filter"
// @Param        active  query     bool    false  "Activity filter"
// @Param        search  query     string  false  "Username or email"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page{items=[]service.UserResponse}}
// @Failure      403     {object}  response.Response
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	pg := pagination.Parse(c)
	filter := service.UserListFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   pg.Page,
		Limit:  pg.Limit,
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(bizerror.BadParam("invalid active filter %q", raw))
			return
		}
		filter.Active = &active
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, users, total, pg.Page, pg.Limit))
}

// GetUser handles GET /api/users/:id
// @Summary      Get user
// @Description  Readable by the account itself and by ADMIN and above
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateProfile handles PATCH /api/users/me
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateProfileRequest  true  "Profile"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Router       /api/users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.MustPrincipal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ToggleStatus handles PATCH /api/users/:id/status
// @Summary      Activate or deactivate an account
// @Description  Nobody toggles itself; only SYSADMIN toggles accounts of equal or higher rank
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/users/{id}/status [patch]
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	user, err := h.userService.ToggleStatus(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ChangeRole handles PATCH /api/users/:id/role
// @Summary      Change an account role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.ChangeRoleRequest  true  "New role"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req service.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.userService.ChangeRole(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/pkg/pagination"
	"github.com/soonland/nexus-gaming/pkg/response"
)

type ArticleHandler struct {
	articleService service.ArticleService
}

func NewArticleHandler(articleService service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// RegisterRoutes mounts the public reading routes and the editorial back office.
// Ownership rules are applied by the service; routes only gate on role.
func (h *ArticleHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	public := router.Group("/api/articles")
	{
		public.GET("", h.ListPublished)
		public.GET("/:slug", h.GetPublished)
	}

	staff := middleware.RequireRole(permission.CanViewArticle)
	admin := router.Group("/api/admin/articles", requireAuth)
	{
		admin.GET("", staff, h.List)
		admin.POST("", staff, h.Create)
		admin.GET("/:id", staff, h.Get)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		admin.PATCH("/:id/status", h.ChangeStatus)
		admin.GET("/:id/transitions", staff, h.Transitions)
		admin.PATCH("/:id/reviewer", middleware.RequireRole(permission.CanAssignReviewer), h.AssignReviewer)
		admin.GET("/:id/history", h.History)
	}
}

func articleFilter(c *gin.Context, pg pagination.Params) service.ArticleListFilter {
	mine, _ := strconv.ParseBool(c.Query("mine"))
	return service.ArticleListFilter{
		Status:     c.Query("status"),
		AuthorID:   c.Query("author_id"),
		ReviewerID: c.Query("reviewer_id"),
		GameID:     c.Query("game_id"),
		Search:     c.Query("search"),
		Mine:       mine,
		Page:       pg.Page,
		Limit:      pg.Limit,
	}
}

// ListPublished handles GET /api/articles
// @Summary      List published articles
// @Tags         articles
// @Produce      json
// @Param        game_id    query     string  false  "Game filter"
// @Param        author_id  query     string  false  "Author filter"
// @Param        search     query     string  false  "Title search"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Page{items=[]service.ArticleResponse}}
// @Router       /api/articles [get]
func (h *ArticleHandler) ListPublished(c *gin.Context) {
	pg := pagination.Parse(c)
	list, total, err := h.articleService.ListPublished(c.Request.Context(), articleFilter(c, pg))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, list, total, pg.Page, pg.Limit))
}

// GetPublished handles GET /api/articles/:slug
// @Summary      Read a published article
// @Description  Returns the article with its content rendered to HTML
// @Tags         articles
// @Produce      json
// @Param        slug  path      string  true  "Article slug"
// @Success      200   {object}  response.Response{data=service.ArticleResponse}
// @Failure      404   {object}  response.Response
// @Router       /api/articles/{slug} [get]
func (h *ArticleHandler) GetPublished(c *gin.Context) {
	article, err := h.articleService.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// List handles GET /api/admin/articles
// @Summary      List articles in any status
// @Tags         admin-articles
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Status filter"
// @Param        mine         query     bool    false  "Only the caller's articles"
// @Param        author_id    query     string  false  "Author filter"
// @Param        reviewer_id  query     string  false  "Reviewer filter"
// @Param        game_id      query     string  false  "Game filter"
// @Param        search       query     string  false  "Title search"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=response.Page{items=[]service.ArticleResponse}}
// @Failure      403          {object}  response.Response
// @Router       /api/admin/articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	pg := pagination.Parse(c)
	list, total, err := h.articleService.List(c.Request.Context(), middleware.MustPrincipal(c), articleFilter(c, pg))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, list, total, pg.Page, pg.Limit))
}

// Get handles GET /api/admin/articles/:id
// @Summary      Get an article
// @Tags         admin-articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  response.Response{data=service.ArticleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/articles/{id} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articleService.Get(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// Create handles POST /api/admin/articles
// @Summary      Create a draft
// @Description  user_id writes on behalf of another author and needs SENIOR_EDITOR
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateArticleRequest  true  "Article"
// @Success      201      {object}  response.Response{data=service.ArticleResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/admin/articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	var req service.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	article, err := h.articleService.Create(c.Request.Context(), middleware.MustPrincipal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, article))
}

// Update handles PUT /api/admin/articles/:id
// @Summary      Edit an article
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Article ID"
// @Param        payload  body      service.UpdateArticleRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=service.ArticleResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/admin/articles/{id} [put]
func (h *ArticleHandler) Update(c *gin.Context) {
	var req service.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	article, err := h.articleService.Update(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// Delete handles DELETE /api/admin/articles/:id
// @Summary      Delete an article
// @Tags         admin-articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/admin/articles/{id} [delete]
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articleService.Delete(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Article deleted successfully"))
}

// ChangeStatus handles PATCH /api/admin/articles/:id/status
// @Summary      Move an article through the workflow
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Article ID"
// @Param        payload  body      service.ChangeStatusRequest  true  "Target status"
// @Success      200      {object}  response.Response{data=service.ArticleResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/admin/articles/{id}/status [patch]
func (h *ArticleHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	article, err := h.articleService.ChangeStatus(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// Transitions handles GET /api/admin/articles/:id/transitions
// @Summary      Next statuses available to the caller
// @Tags         admin-articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  response.Response{data=service.TransitionsResponse}
// @Router       /api/admin/articles/{id}/transitions [get]
func (h *ArticleHandler) Transitions(c *gin.Context) {
	res, err := h.articleService.AvailableTransitions(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// AssignReviewer handles PATCH /api/admin/articles/:id/reviewer
// @Summary      Assign a reviewer
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Article ID"
// @Param        payload  body      service.AssignReviewerRequest  true  "Reviewer"
// @Success      200      {object}  response.Response{data=service.ArticleResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/admin/articles/{id}/reviewer [patch]
func (h *ArticleHandler) AssignReviewer(c *gin.Context) {
	var req service.AssignReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	article, err := h.articleService.AssignReviewer(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// History handles GET /api/admin/articles/:id/history
// @Summary      Editorial history
// @Tags         admin-articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  response.Response{data=[]service.ApprovalResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/admin/articles/{id}/history [get]
func (h *ArticleHandler) History(c *gin.Context) {
	history, err := h.articleService.History(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

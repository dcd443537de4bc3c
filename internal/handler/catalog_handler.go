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

// CatalogHandler serves games, platforms and companies. Reads are public.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	write := middleware.RequireMinRole(permission.RoleEditor)
	remove := middleware.RequireMinRole(permission.RoleSeniorEditor)

	games := router.Group("/api/games")
	{
		games.GET("", h.ListGames)
		games.GET("/:id", h.GetGame)
		games.POST("", requireAuth, write, h.CreateGame)
		games.PUT("/:id", requireAuth, write, h.UpdateGame)
		games.DELETE("/:id", requireAuth, remove, h.DeleteGame)
	}

	platforms := router.Group("/api/platforms")
	{
		platforms.GET("", h.ListPlatforms)
		platforms.POST("", requireAuth, write, h.CreatePlatform)
		platforms.PUT("/:id", requireAuth, write, h.UpdatePlatform)
		platforms.DELETE("/:id", requireAuth, remove, h.DeletePlatform)
	}

	companies := router.Group("/api/companies")
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompany)
		companies.POST("", requireAuth, write, h.CreateCompany)
		companies.PUT("/:id", requireAuth, write, h.UpdateCompany)
		companies.DELETE("/:id", requireAuth, remove, h.DeleteCompany)
	}
}

// ListGames handles GET /api/games
// @Summary      List games
// @Tags         games
// @Produce      json
// @Param        search      query     string  false  "Title search"
// @Param        genre       query     string  false  "Genre"
// @Param        platform_id query     string  false  "Platform filter"
// @Param        company_id  query     string  false  "Developer or publisher filter"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=response.Page{items=[]service.GameResponse}}
// @Router       /api/games [get]
func (h *CatalogHandler) ListGames(c *gin.Context) {
	pg := pagination.Parse(c)
	filter := service.GameListFilter{
		Search:     c.Query("search"),
		Genre:      c.Query("genre"),
		PlatformID: c.Query("platform_id"),
		CompanyID:  c.Query("company_id"),
		Page:       pg.Page,
		Limit:      pg.Limit,
	}
	games, total, err := h.catalogService.ListGames(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, games, total, pg.Page, pg.Limit))
}

// GetGame handles GET /api/games/:id
// @Summary      Get a game by id or slug
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID or slug"
// @Success      200  {object}  response.Response{data=service.GameResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/games/{id} [get]
func (h *CatalogHandler) GetGame(c *gin.Context) {
	game, err := h.catalogService.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, game))
}

// CreateGame handles POST /api/games
// @Summary      Create a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.GameRequest  true  "Game"
// @Success      201      {object}  response.Response{data=service.GameResponse}
// @Router       /api/games [post]
func (h *CatalogHandler) CreateGame(c *gin.Context) {
	var req service.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	game, err := h.catalogService.CreateGame(c.Request.Context(), middleware.MustPrincipal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, game))
}

// UpdateGame handles PUT /api/games/:id
// @Summary      Update a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Game ID"
// @Param        payload  body      service.GameRequest  true  "Game"
// @Success      200      {object}  response.Response{data=service.GameResponse}
// @Router       /api/games/{id} [put]
func (h *CatalogHandler) UpdateGame(c *gin.Context) {
	var req service.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	game, err := h.catalogService.UpdateGame(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, game))
}

// DeleteGame handles DELETE /api/games/:id
// @Summary      Delete a game
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  response.Response
// @Router       /api/games/{id} [delete]
func (h *CatalogHandler) DeleteGame(c *gin.Context) {
	if err := h.catalogService.DeleteGame(c.Request.Context(), middleware.MustPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Game deleted successfully"))
}

// ListPlatforms handles GET /api/platforms
// @Summary      List platforms
// @Tags         platforms
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.PlatformResponse}
// @Router       /api/platforms [get]
func (h *CatalogHandler) ListPlatforms(c *gin.Context) {
	list, err := h.catalogService.ListPlatforms(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// @Summary      Create a platform
// @Tags         platforms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PlatformRequest  true  "Platform"
// @Success      201      {object}  response.Response{data=service.PlatformResponse}
// @Router       /api/platforms [post]
func (h *CatalogHandler) CreatePlatform(c *gin.Context) {
	var req service.PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.catalogService.CreatePlatform(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// @Summary      Update a platform
// @Tags         platforms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Platform ID"
// @Param        payload  body      service.PlatformRequest  true  "Platform"
// @Success      200      {object}  response.Response{data=service.PlatformResponse}
// @Router       /api/platforms/{id} [put]
func (h *CatalogHandler) UpdatePlatform(c *gin.Context) {
	var req service.PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.catalogService.UpdatePlatform(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Delete a platform
// @Tags         platforms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Platform ID"
// @Success      200  {object}  response.Response
// @Router       /api/platforms/{id} [delete]
func (h *CatalogHandler) DeletePlatform(c *gin.Context) {
	if err := h.catalogService.DeletePlatform(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Platform deleted successfully"))
}

// ListCompanies handles GET /api/companies
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Param        search  query     string  false  "Name search"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page{items=[]service.CompanyResponse}}
// @Router       /api/companies [get]
func (h *CatalogHandler) ListCompanies(c *gin.Context) {
	pg := pagination.Parse(c)
	list, total, err := h.catalogService.ListCompanies(c.Request.Context(), c.Query("search"), pg.Page, pg.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, list, total, pg.Page, pg.Limit))
}

// @Summary      Get a company
// @Tags         companies
// @Produce      json
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/companies/{id} [get]
func (h *CatalogHandler) GetCompany(c *gin.Context) {
	res, err := h.catalogService.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CompanyRequest  true  "Company"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Router       /api/companies [post]
func (h *CatalogHandler) CreateCompany(c *gin.Context) {
	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.catalogService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Company ID"
// @Param        payload  body      service.CompanyRequest  true  "Company"
// @Success      200      {object}  response.Response{data=service.CompanyResponse}
// @Router       /api/companies/{id} [put]
func (h *CatalogHandler) UpdateCompany(c *gin.Context) {
	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.catalogService.UpdateCompany(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Delete a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Router       /api/companies/{id} [delete]
func (h *CatalogHandler) DeleteCompany(c *gin.Context) {
	if err := h.catalogService.DeleteCompany(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Company deleted successfully"))
}

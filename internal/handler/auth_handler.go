package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/pkg/response"
)

// CookieSettings controls how session cookies are written
type CookieSettings struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
}

type AuthHandler struct {
	authService service.AuthService
	limiter     *middleware.RateLimiter
	cookies     CookieSettings
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(authService service.AuthService, limiter *middleware.RateLimiter, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter, cookies: cookies}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group := router.Group("/auth")
	{
		if h.limiter != nil {
			group.POST("/login", h.limiter.Middleware(), h.Login)
			group.POST("/register", h.limiter.Middleware(), h.Register)
		} else {
			group.POST("/login", h.Login)
			group.POST("/register", h.Register)
		}
		group.POST("/refresh", h.Refresh)
		group.POST("/logout", h.Logout)
		group.GET("/me", requireAuth, h.Me)
	}
}

// Register creates a reader account
// @Summary      Register
// @Description  Creates a USER account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Account"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Login handles POST /auth/login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	tokenRes, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Set tokens as HttpOnly cookies
	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken, h.cookies.AccessTTL, h.cookies.RefreshTTL, h.cookies.Secure)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Refresh handles POST /auth/refresh to issue new access and refresh tokens
// @Summary      Refresh token
// @Description  Rotates the refresh token, read from the body or the refresh_token cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  false  "Refresh token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(middleware.RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		middleware.ClearTokenCookies(c, h.cookies.Secure)
		c.JSON(http.StatusUnauthorized, response.Failure(http.StatusUnauthorized, "common.unauthenticated", "refresh token is missing"))
		return
	}

	tokenRes, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		middleware.ClearTokenCookies(c, h.cookies.Secure)
		_ = c.Error(err)
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken, h.cookies.AccessTTL, h.cookies.RefreshTTL, h.cookies.Secure)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout handles POST /auth/logout
// @Summary      Logout
// @Description  Revokes the refresh token and clears session cookies
// @Tags         auth
// @Produce      json
// @Success      200      {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(middleware.RefreshTokenCookie)
	if refresh == "" {
		var req service.RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		refresh = req.RefreshToken
	}

	if err := h.authService.Logout(c.Request.Context(), refresh); err != nil {
		_ = c.Error(err)
		return
	}
	middleware.ClearTokenCookies(c, h.cookies.Secure)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out successfully"))
}

// Me returns the current user and what the interface should offer them
// @Summary      Get current user
// @Description  Get the currently authenticated user and its capabilities
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.MeResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	me, err := h.authService.Me(c.Request.Context(), middleware.MustPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, me))
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/permission"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	principalKey = "principal"
)

// TokenParser verifies an access token and returns its principal
type TokenParser interface {
	Parse(token string) (permission.Principal, error)
}

// AccountStates reports the live role and activity of an account, so that a
// deactivation or role change applies before the token expires
type AccountStates interface {
	AccountState(ctx context.Context, userID string) (permission.Role, bool, error)
}

// SetPrincipal stores the authenticated principal on the request
func SetPrincipal(c *gin.Context, p permission.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the principal stored by RequireAuth
func CurrentPrincipal(c *gin.Context) (permission.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return permission.Principal{}, false
	}
	p, ok := v.(permission.Principal)
	return p, ok
}

// MustPrincipal is CurrentPrincipal for handlers mounted behind RequireAuth
func MustPrincipal(c *gin.Context) permission.Principal {
	p, _ := CurrentPrincipal(c)
	return p
}

func bearerToken(c *gin.Context) (string, error) {
	// Try cookie first, fallback to Authorization header
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("%w: authorization is missing", bizerror.ErrUnauthenticated)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("%w: expected 'Bearer <token>'", bizerror.ErrUnauthenticated)
	}
	return parts[1], nil
}

// RequireAuth validates the access token and refreshes the principal's role
// from states when provided
func RequireAuth(tokens TokenParser, states AccountStates) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		p, err := tokens.Parse(raw)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		if states != nil {
			role, active, err := states.AccountState(c.Request.Context(), p.ID)
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			if !active {
				_ = c.Error(bizerror.ErrInactiveAccount)
				c.Abort()
				return
			}
			p.Role = role
		}

		SetPrincipal(c, p)
		c.Next()
	}
}

// RequireRole lets the request through when check accepts the principal's role.
// It expects RequireAuth to have run.
func RequireRole(check func(permission.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			_ = c.Error(bizerror.ErrUnauthenticated)
			c.Abort()
			return
		}
		if !check(p.Role) {
			_ = c.Error(bizerror.Forbidden("insufficient role %s", p.Role))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireMinRole is RequireRole for a plain hierarchy floor
func RequireMinRole(min permission.Role) gin.HandlerFunc {
	return RequireRole(func(r permission.Role) bool {
		return permission.HasSufficientRole(r, min)
	})
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration, secure bool) {
	// cross-origin production needs SameSite=None, which browsers only accept with Secure
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, accessToken, int(accessTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(refreshTTL.Seconds()), "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/soonland/nexus-gaming/internal/auth"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := auth.NewTokenManager([]byte("secret"), time.Hour)
	p := permission.Principal{ID: "4b1c", Role: permission.RoleEditor}

	token, expiresAt, err := m.Issue(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	parsed, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := auth.NewTokenManager([]byte("secret"), time.Hour)
	token, _, err := m.Issue(permission.Principal{ID: "u1", Role: permission.RoleUser})
	require.NoError(t, err)

	other := auth.NewTokenManager([]byte("other"), time.Hour)
	_, err = other.Parse(token)
	assert.True(t, errors.Is(err, bizerror.ErrUnauthenticated))

	_, err = m.Parse("")
	assert.True(t, errors.Is(err, bizerror.ErrUnauthenticated))

	_, err = m.Parse("not.a.token")
	assert.True(t, errors.Is(err, bizerror.ErrUnauthenticated))

	expired := auth.NewTokenManager([]byte("secret"), time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	old, _, err := expired.Issue(permission.Principal{ID: "u1", Role: permission.RoleUser})
	require.NoError(t, err)
	_, err = m.Parse(old)
	assert.True(t, errors.Is(err, bizerror.ErrUnauthenticated))
}

func TestParseRejectsUnknownRole(t *testing.T) {
	claims := auth.Claims{
		Role: "OWNER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "nexus-gaming",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.NewTokenManager([]byte("secret"), time.Hour).Parse(token)
	assert.True(t, errors.Is(err, bizerror.ErrUnauthenticated))
}

func TestIssueRequiresCompletePrincipal(t *testing.T) {
	m := auth.NewTokenManager([]byte("secret"), time.Hour)
	_, _, err := m.Issue(permission.Principal{Role: permission.RoleUser})
	assert.Error(t, err)
	_, _, err = m.Issue(permission.Principal{ID: "u1"})
	assert.Error(t, err)
}

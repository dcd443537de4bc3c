package bizerror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type payload struct {
	Name string `json:"name" binding:"required"`
}

func newRouter(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(fail)
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	router.POST("/bind", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
	})
	return router
}

func do(t *testing.T, router *gin.Engine, req *http.Request) (int, response.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorHandlingMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{bizerror.ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated"},
		{bizerror.Forbidden("cannot publish"), http.StatusForbidden, "security.forbidden"},
		{bizerror.ErrInactiveAccount, http.StatusForbidden, "security.inactive_account"},
		{fmt.Errorf("load article: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "common.record_not_found"},
		{bizerror.NotFound("article"), http.StatusNotFound, "common.record_not_found"},
		{fmt.Errorf("%w: slug taken", bizerror.ErrConflict), http.StatusConflict, "common.conflict"},
		{bizerror.ErrTooManyRequests, http.StatusTooManyRequests, "common.too_many_requests"},
		{bizerror.BadParam("invalid id %q", "x"), http.StatusBadRequest, "common.bad_param"},
		{errors.New("db down"), http.StatusInternalServerError, "common.internal_server_error"},
	}

	for _, tc := range cases {
		status, body := do(t, newRouter(tc.err), httptest.NewRequest(http.MethodGet, "/fail", nil))
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.status, body.StatusCode)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, tc.code, body.Code)
	}
}

func TestErrorHandlingKeepsForbiddenReason(t *testing.T) {
	_, body := do(t, newRouter(bizerror.Forbidden("cannot publish")), httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, "access forbidden: cannot publish", body.Error)
}

func TestErrorHandlingRecoversPanics(t *testing.T) {
	status, body := do(t, newRouter(nil), httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)
}

func TestErrorHandlingHidesInternalDetails(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	cause := errors.New(`pq: password authentication failed for user "nexus" host=db.internal`)
	status, body := do(t, newRouter(fmt.Errorf("list articles: %w", cause)), httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)
	assert.NotContains(t, body.Error, "db.internal")

	// the cause still reaches the logs
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "db.internal")
}

func TestErrorHandlingBindingErrors(t *testing.T) {
	router := newRouter(nil)

	status, body := do(t, router, httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request.validation_failed", body.Code)

	status, body = do(t, router, httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{"name":`)))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, strings.HasPrefix(body.Code, "bad_request."), body.Code)

	status, _ = do(t, router, httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{"name":"nexus"}`)))
	assert.Equal(t, http.StatusOK, status)
}

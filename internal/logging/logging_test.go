package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/logging"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerWritesStructuredEntry(t *testing.T) {
	logging.Configure("debug", "json", "test")
	buf := &bytes.Buffer{}
	logrus.StandardLogger().Out = buf

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(logging.RequestLogger(func(c *gin.Context) (permission.Principal, bool) {
		return permission.Principal{ID: "u1", Role: permission.RoleEditor}, true
	}))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "pong") })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "EDITOR", entry["role"])
	assert.Equal(t, logging.ServiceName, entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "warning", entry["level"])
}

package handler_test

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soonland/nexus-gaming/api/swagger"
	"github.com/soonland/nexus-gaming/internal/handler"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

// every registered API route has a matching swagger operation and the other way round
func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	r := gin.New()
	api := &r.RouterGroup
	handler.NewAuthHandler(nil, middleware.NewRateLimiter(10), handler.CookieSettings{}).RegisterRoutes(api, fakeAuth)
	handler.NewUserHandler(nil).RegisterRoutes(api, fakeAuth)
	handler.NewArticleHandler(nil).RegisterRoutes(api, fakeAuth)
	handler.NewAnnouncementHandler(nil).RegisterRoutes(api, fakeAuth)
	handler.NewNotificationHandler(nil, nil, nil, nil).RegisterRoutes(api, fakeAuth)
	handler.NewCatalogHandler(nil).RegisterRoutes(api, fakeAuth)
	handler.NewAuditHandler(nil).RegisterRoutes(api, fakeAuth)
	handler.NewStatisticsHandler(nil).RegisterRoutes(api, fakeAuth)

	routes := []string{}
	for _, route := range r.Routes() {
		routes = append(routes, route.Method+" "+pathParam.ReplaceAllString(route.Path, "{$1}"))
	}
	sort.Strings(routes)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(swagger.SwaggerInfo.ReadDoc()), &doc))
	documented := []string{}
	for path, ops := range doc.Paths {
		for method := range ops {
			documented = append(documented, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(documented)

	assert.Equal(t, routes, documented)
}

package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// principalHeader lets tests pick the caller without issuing tokens
const principalHeader = "X-Test-Role"

func fakeAuth(c *gin.Context) {
	role := c.GetHeader(principalHeader)
	if role == "" {
		_ = c.Error(bizerror.ErrUnauthenticated)
		c.Abort()
		return
	}
	middleware.SetPrincipal(c, permission.Principal{ID: "u-" + strings.ToLower(role), Role: permission.Role(role)})
	c.Next()
}

type routes interface {
	RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc)
}

func newRouter(h routes) *gin.Engine {
	r := gin.New()
	r.Use(bizerror.ErrorHandling())
	h.RegisterRoutes(&r.RouterGroup, fakeAuth)
	return r
}

func do(r http.Handler, method, path, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set(principalHeader, role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type articleServiceMock struct {
	ListPublishedFunc  func(filter service.ArticleListFilter) ([]service.ArticleResponse, int64, error)
	GetPublishedFunc   func(slug string) (*service.ArticleResponse, error)
	ListFunc           func(p permission.Principal, filter service.ArticleListFilter) ([]service.ArticleResponse, int64, error)
	GetFunc            func(p permission.Principal, id string) (*service.ArticleResponse, error)
	CreateFunc         func(p permission.Principal, req service.CreateArticleRequest) (*service.ArticleResponse, error)
	UpdateFunc         func(p permission.Principal, id string, req service.UpdateArticleRequest) (*service.ArticleResponse, error)
	DeleteFunc         func(p permission.Principal, id string) error
	ChangeStatusFunc   func(p permission.Principal, id string, req service.ChangeStatusRequest) (*service.ArticleResponse, error)
	TransitionsFunc    func(p permission.Principal, id string) (*service.TransitionsResponse, error)
	AssignReviewerFunc func(p permission.Principal, id string, req service.AssignReviewerRequest) (*service.ArticleResponse, error)
	HistoryFunc        func(p permission.Principal, id string) ([]service.ApprovalResponse, error)
}

func (m *articleServiceMock) ListPublished(_ context.Context, filter service.ArticleListFilter) ([]service.ArticleResponse, int64, error) {
	return m.ListPublishedFunc(filter)
}

func (m *articleServiceMock) GetPublished(_ context.Context, slug string) (*service.ArticleResponse, error) {
	return m.GetPublishedFunc(slug)
}

func (m *articleServiceMock) List(_ context.Context, p permission.Principal, filter service.ArticleListFilter) ([]service.ArticleResponse, int64, error) {
	return m.ListFunc(p, filter)
}

func (m *articleServiceMock) Get(_ context.Context, p permission.Principal, id string) (*service.ArticleResponse, error) {
	return m.GetFunc(p, id)
}

func (m *articleServiceMock) Create(_ context.Context, p permission.Principal, req service.CreateArticleRequest) (*service.ArticleResponse, error) {
	return m.CreateFunc(p, req)
}

func (m *articleServiceMock) Update(_ context.Context, p permission.Principal, id string, req service.UpdateArticleRequest) (*service.ArticleResponse, error) {
	return m.UpdateFunc(p, id, req)
}

func (m *articleServiceMock) Delete(_ context.Context, p permission.Principal, id string) error {
	return m.DeleteFunc(p, id)
}

func (m *articleServiceMock) ChangeStatus(_ context.Context, p permission.Principal, id string, req service.ChangeStatusRequest) (*service.ArticleResponse, error) {
	return m.ChangeStatusFunc(p, id, req)
}

func (m *articleServiceMock) AvailableTransitions(_ context.Context, p permission.Principal, id string) (*service.TransitionsResponse, error) {
	return m.TransitionsFunc(p, id)
}

func (m *articleServiceMock) AssignReviewer(_ context.Context, p permission.Principal, id string, req service.AssignReviewerRequest) (*service.ArticleResponse, error) {
	return m.AssignReviewerFunc(p, id, req)
}

func (m *articleServiceMock) History(_ context.Context, p permission.Principal, id string) ([]service.ApprovalResponse, error) {
	return m.HistoryFunc(p, id)
}

type authServiceMock struct {
	RegisterFunc func(req service.RegisterRequest) (*service.UserResponse, error)
	LoginFunc    func(req service.LoginRequest) (*service.TokenResponse, error)
	RefreshFunc  func(req service.RefreshTokenRequest) (*service.TokenResponse, error)
	LogoutFunc   func(refreshToken string) error
	MeFunc       func(p permission.Principal) (*service.MeResponse, error)
}

func (m *authServiceMock) Register(_ context.Context, req service.RegisterRequest) (*service.UserResponse, error) {
	return m.RegisterFunc(req)
}

func (m *authServiceMock) Login(_ context.Context, req service.LoginRequest) (*service.TokenResponse, error) {
	return m.LoginFunc(req)
}

func (m *authServiceMock) Refresh(_ context.Context, req service.RefreshTokenRequest) (*service.TokenResponse, error) {
	return m.RefreshFunc(req)
}

func (m *authServiceMock) Logout(_ context.Context, refreshToken string) error {
	return m.LogoutFunc(refreshToken)
}

func (m *authServiceMock) Me(_ context.Context, p permission.Principal) (*service.MeResponse, error) {
	return m.MeFunc(p)
}

type notificationServiceMock struct {
	broadcast func(p permission.Principal, req service.BroadcastRequest) (*service.BroadcastResponse, error)
	marked    []string
}

func (m *notificationServiceMock) Notify(context.Context, uuid.UUID, service.NotifyInput) error {
	return nil
}

func (m *notificationServiceMock) Broadcast(_ context.Context, p permission.Principal, req service.BroadcastRequest) (*service.BroadcastResponse, error) {
	return m.broadcast(p, req)
}

func (m *notificationServiceMock) List(context.Context, permission.Principal, bool, int, int) ([]service.NotificationResponse, int64, error) {
	return []service.NotificationResponse{}, 0, nil
}

func (m *notificationServiceMock) UnreadCount(context.Context, permission.Principal) (int64, error) {
	return 3, nil
}

func (m *notificationServiceMock) MarkRead(_ context.Context, _ permission.Principal, id string) error {
	if id == "missing" {
		return bizerror.NotFound("notification")
	}
	m.marked = append(m.marked, id)
	return nil
}

func (m *notificationServiceMock) MarkAllRead(context.Context, permission.Principal) (int64, error) {
	return int64(len(m.marked)), nil
}

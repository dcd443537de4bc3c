package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/handler"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func decode(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestPublicArticleListNeedsNoAuth(t *testing.T) {
	var got service.ArticleListFilter
	mock := &articleServiceMock{
		ListPublishedFunc: func(filter service.ArticleListFilter) ([]service.ArticleResponse, int64, error) {
			got = filter
			return []service.ArticleResponse{{ID: "a1", Status: permission.StatusPublished}}, 1, nil
		},
	}
	r := newRouter(handler.NewArticleHandler(mock))

	w := do(r, http.MethodGet, "/api/articles?game_id=g1&page=2&limit=5", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "g1", got.GameID)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)

	var page struct {
		Items []service.ArticleResponse `json:"items"`
		Total int64                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &page))
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, "a1", page.Items[0].ID)
}

func TestPublishedArticleNotFound(t *testing.T) {
	mock := &articleServiceMock{
		GetPublishedFunc: func(slug string) (*service.ArticleResponse, error) {
			return nil, bizerror.NotFound("article")
		},
	}
	w := do(newRouter(handler.NewArticleHandler(mock)), http.MethodGet, "/api/articles/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "common.record_not_found", decode(t, w.Body.Bytes()).Code)
}

func TestBackOfficeListIsGatedByRole(t *testing.T) {
	called := false
	mock := &articleServiceMock{
		ListFunc: func(p permission.Principal, filter service.ArticleListFilter) ([]service.ArticleResponse, int64, error) {
			called = true
			assert.True(t, filter.Mine)
			assert.Equal(t, "DRAFT", filter.Status)
			return nil, 0, nil
		},
	}
	r := newRouter(handler.NewArticleHandler(mock))

	w := do(r, http.MethodGet, "/api/admin/articles", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/admin/articles", string(permission.RoleUser), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "security.forbidden", decode(t, w.Body.Bytes()).Code)
	assert.False(t, called)

	w = do(r, http.MethodGet, "/api/admin/articles?mine=true&status=DRAFT", string(permission.RoleEditor), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestChangeStatus(t *testing.T) {
	mock := &articleServiceMock{
		ChangeStatusFunc: func(p permission.Principal, id string, req service.ChangeStatusRequest) (*service.ArticleResponse, error) {
			assert.Equal(t, permission.RoleSeniorEditor, p.Role)
			if req.Status == string(permission.StatusArchived) {
				return nil, bizerror.ErrConflict
			}
			return &service.ArticleResponse{ID: id, Status: permission.ArticleStatus(req.Status)}, nil
		},
	}
	r := newRouter(handler.NewArticleHandler(mock))
	role := string(permission.RoleSeniorEditor)

	w := do(r, http.MethodPatch, "/api/admin/articles/a1/status", role, `{"status":"PUBLISHED","comment":"ok"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res service.ArticleResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &res))
	assert.Equal(t, permission.StatusPublished, res.Status)

	w = do(r, http.MethodPatch, "/api/admin/articles/a1/status", role, `{"status":"ARCHIVED"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPatch, "/api/admin/articles/a1/status", role, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request.validation_failed", decode(t, w.Body.Bytes()).Code)

	w = do(r, http.MethodPatch, "/api/admin/articles/a1/status", role, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnershipRoutesReachTheService(t *testing.T) {
	var deletedBy permission.Principal
	mock := &articleServiceMock{
		DeleteFunc: func(p permission.Principal, id string) error {
			deletedBy = p
			return nil
		},
		HistoryFunc: func(p permission.Principal, id string) ([]service.ApprovalResponse, error) {
			return nil, bizerror.Forbidden("not your article")
		},
	}
	r := newRouter(handler.NewArticleHandler(mock))

	// a reader may discard its own draft; the service decides
	w := do(r, http.MethodDelete, "/api/admin/articles/a1", string(permission.RoleUser), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, permission.RoleUser, deletedBy.Role)

	w = do(r, http.MethodGet, "/api/admin/articles/a1/history", string(permission.RoleEditor), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignReviewerNeedsReviewRights(t *testing.T) {
	mock := &articleServiceMock{
		AssignReviewerFunc: func(p permission.Principal, id string, req service.AssignReviewerRequest) (*service.ArticleResponse, error) {
			return &service.ArticleResponse{ID: id}, nil
		},
	}
	r := newRouter(handler.NewArticleHandler(mock))

	w := do(r, http.MethodPatch, "/api/admin/articles/a1/reviewer", string(permission.RoleEditor), `{"reviewer_id":"7f1c0e8e-4c1a-4f5b-9f7e-2b7d1f0a9c11"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPatch, "/api/admin/articles/a1/reviewer", string(permission.RoleAdmin), `{"reviewer_id":"7f1c0e8e-4c1a-4f5b-9f7e-2b7d1f0a9c11"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

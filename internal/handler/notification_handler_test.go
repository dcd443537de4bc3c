package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/soonland/nexus-gaming/internal/handler"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastIsAdminOnly(t *testing.T) {
	sent := 0
	mock := &notificationServiceMock{
		broadcast: func(p permission.Principal, req service.BroadcastRequest) (*service.BroadcastResponse, error) {
			sent++
			return &service.BroadcastResponse{Recipients: 4}, nil
		},
	}
	r := newRouter(handler.NewNotificationHandler(mock, nil, nil, nil))
	body := `{"title":"Maintenance","message":"Back office offline at 22:00"}`

	w := do(r, http.MethodPost, "/api/admin/notifications/broadcast", string(permission.RoleSeniorEditor), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, sent)

	w = do(r, http.MethodPost, "/api/admin/notifications/broadcast", string(permission.RoleAdmin), body)
	require.Equal(t, http.StatusCreated, w.Code)
	var res service.BroadcastResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &res))
	assert.Equal(t, 4, res.Recipients)

	w = do(r, http.MethodPost, "/api/admin/notifications/broadcast", string(permission.RoleAdmin), `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, sent)
}

func TestOwnNotifications(t *testing.T) {
	mock := &notificationServiceMock{}
	r := newRouter(handler.NewNotificationHandler(mock, nil, nil, nil))
	role := string(permission.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/notifications", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/notifications?unread=true", role, "").Code)

	w := do(r, http.MethodGet, "/api/notifications/unread-count", role, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unread":3}`, string(decode(t, w.Body.Bytes()).Data))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, "/api/notifications/n1/read", role, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/api/notifications/missing/read", role, "").Code)
	assert.Equal(t, []string{"n1"}, mock.marked)

	w = do(r, http.MethodPatch, "/api/notifications/read-all", role, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":1}`, string(decode(t, w.Body.Bytes()).Data))
}

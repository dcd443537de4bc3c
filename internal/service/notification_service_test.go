package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesActiveUsers(t *testing.T) {
	admin := newUser(permission.RoleAdmin)
	editor := newUser(permission.RoleEditor)
	gone := newUser(permission.RoleUser)
	gone.IsActive = false

	repo := &fakeNotifications{}
	audit := &fakeAudit{}
	pusher := newFakePusher()
	svc := NewNotificationService(repo, newFakeUsers(admin, editor, gone), audit, &fakeTx{}, pusher)
	ctx := context.Background()

	_, err := svc.Broadcast(ctx, editor.Principal(), BroadcastRequest{Title: "Maintenance", Message: "tonight"})
	assert.ErrorIs(t, err, bizerror.ErrForbidden)

	res, err := svc.Broadcast(ctx, admin.Principal(), BroadcastRequest{Title: "Maintenance", Message: "tonight"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recipients)
	assert.Len(t, repo.list, 2)
	for _, n := range repo.list {
		assert.Equal(t, model.NotificationSystem, n.Kind)
		assert.NotEqual(t, gone.ID, n.UserID)
	}
	assert.Equal(t, 1, pusher.toUser[editor.ID.String()])
	assert.Equal(t, 0, pusher.toUser[gone.ID.String()])
	assert.Equal(t, []string{model.ActionBroadcastNotification}, audit.actions())
}

func TestNotifyAndRead(t *testing.T) {
	editor := newUser(permission.RoleEditor)
	other := newUser(permission.RoleEditor)
	repo := &fakeNotifications{}
	pusher := newFakePusher()
	svc := NewNotificationService(repo, newFakeUsers(editor, other), &fakeAudit{}, &fakeTx{}, pusher)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, editor.ID, NotifyInput{Kind: model.NotificationArticleStatus, Title: "Published"}))
	require.NoError(t, svc.Notify(ctx, editor.ID, NotifyInput{Kind: model.NotificationArticleStatus, Title: "Archived"}))
	assert.Equal(t, 2, pusher.toUser[editor.ID.String()])

	count, err := svc.UnreadCount(ctx, editor.Principal())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	first := repo.list[0].ID.String()
	assert.ErrorIs(t, svc.MarkRead(ctx, other.Principal(), first), bizerror.ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, editor.Principal(), first))

	unread, total, err := svc.List(ctx, editor.Principal(), true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Archived", unread[0].Title)

	n, err := svc.MarkAllRead(ctx, editor.Principal())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.ErrorIs(t, svc.MarkRead(ctx, editor.Principal(), uuid.NewString()), bizerror.ErrNotFound)
}

func TestNotifyWithoutPusher(t *testing.T) {
	repo := &fakeNotifications{}
	svc := NewNotificationService(repo, newFakeUsers(), &fakeAudit{}, &fakeTx{}, nil)
	require.NoError(t, svc.Notify(context.Background(), uuid.New(), NotifyInput{Kind: model.NotificationSystem, Title: "hi"}))
	assert.Len(t, repo.list, 1)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var announcementNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newAnnouncementFixture() (*announcementService, *fakeAnnouncements, *fakeAudit) {
	repo := newFakeAnnouncements()
	audit := &fakeAudit{}
	svc := NewAnnouncementService(repo, audit, &fakeTx{}).(*announcementService)
	svc.now = func() time.Time { return announcementNow }
	return svc, repo, audit
}

func TestAnnouncementPermissions(t *testing.T) {
	svc, _, _ := newAnnouncementFixture()
	ctx := context.Background()
	editor := newUser(permission.RoleEditor)
	senior := newUser(permission.RoleSeniorEditor)
	reader := newUser(permission.RoleUser)

	_, err := svc.List(ctx, reader.Principal(), false)
	assert.ErrorIs(t, err, bizerror.ErrForbidden)

	_, err = svc.Create(ctx, editor.Principal(), CreateAnnouncementRequest{Message: "hi", ExpiresAt: announcementNow.Add(time.Hour)})
	assert.ErrorIs(t, err, bizerror.ErrForbidden)

	_, err = svc.List(ctx, editor.Principal(), true)
	assert.ErrorIs(t, err, bizerror.ErrForbidden)

	created, err := svc.Create(ctx, senior.Principal(), CreateAnnouncementRequest{Message: " Server migration ", ExpiresAt: announcementNow.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "Server migration", created.Message)
	assert.Equal(t, model.AnnouncementInfo, created.Kind)
	assert.True(t, created.Visible)

	list, err := svc.List(ctx, editor.Principal(), false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Create(ctx, senior.Principal(), CreateAnnouncementRequest{Message: "late", ExpiresAt: announcementNow.Add(-time.Hour)})
	var bad *bizerror.ErrBadParam
	assert.ErrorAs(t, err, &bad)
}

func TestExtendAnnouncement(t *testing.T) {
	svc, repo, audit := newAnnouncementFixture()
	ctx := context.Background()
	senior := newUser(permission.RoleSeniorEditor)

	active := &model.Announcement{Message: "a", Kind: model.AnnouncementUrgent, IsActive: true, ExpiresAt: announcementNow.Add(48 * time.Hour)}
	expired := &model.Announcement{Message: "b", Kind: model.AnnouncementInfo, IsActive: true, ExpiresAt: announcementNow.Add(-72 * time.Hour)}
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, expired))

	res, err := svc.Extend(ctx, senior.Principal(), active.ID.String(), ExtendAnnouncementRequest{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, formatTime(announcementNow.Add(48*time.Hour).AddDate(0, 0, 7)), res.ExpiresAt)

	// an expired announcement restarts from now
	res, err = svc.Extend(ctx, senior.Principal(), expired.ID.String(), ExtendAnnouncementRequest{Days: 1})
	require.NoError(t, err)
	assert.Equal(t, formatTime(announcementNow.AddDate(0, 0, 1)), res.ExpiresAt)
	assert.True(t, res.Visible)

	_, err = svc.Extend(ctx, senior.Principal(), active.ID.String(), ExtendAnnouncementRequest{Days: 400})
	var bad *bizerror.ErrBadParam
	assert.ErrorAs(t, err, &bad)

	_, err = svc.Extend(ctx, senior.Principal(), uuid.NewString(), ExtendAnnouncementRequest{Days: 1})
	assert.Error(t, err)

	assert.Equal(t, []string{model.ActionExtendAnnouncement, model.ActionExtendAnnouncement}, audit.actions())
}

func TestUpdateAndDeleteAnnouncement(t *testing.T) {
	svc, repo, _ := newAnnouncementFixture()
	ctx := context.Background()
	senior := newUser(permission.RoleSeniorEditor)

	a := &model.Announcement{Message: "a", Kind: model.AnnouncementInfo, IsActive: true, ExpiresAt: announcementNow.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, a))

	inactive := false
	kind := model.AnnouncementAttention
	res, err := svc.Update(ctx, senior.Principal(), a.ID.String(), UpdateAnnouncementRequest{IsActive: &inactive, Kind: &kind})
	require.NoError(t, err)
	assert.False(t, res.Visible)
	assert.Equal(t, model.AnnouncementAttention, res.Kind)

	all, err := svc.List(ctx, senior.Principal(), true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	visible, err := svc.List(ctx, senior.Principal(), false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, svc.Delete(ctx, senior.Principal(), a.ID.String()))
	assert.Empty(t, repo.byID)
}

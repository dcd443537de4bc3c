package permission_test

import (
	"testing"

	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/stretchr/testify/assert"
)

func minRoleTable(t *testing.T, name string, check func(permission.Role) bool, min permission.Role) {
	t.Run(name, func(t *testing.T) {
		for _, r := range permission.Roles() {
			assert.Equal(t, r.Rank() >= min.Rank(), check(r), "%s for %s", name, r)
		}
		assert.False(t, check(""), "%s for absent role", name)
	})
}

func TestRoleOnlyPredicates(t *testing.T) {
	minRoleTable(t, "view announcements", permission.CanViewAnnouncements, permission.RoleEditor)
	minRoleTable(t, "manage announcements", permission.CanManageAnnouncements, permission.RoleSeniorEditor)
	minRoleTable(t, "broadcast", permission.CanBroadcastNotifications, permission.RoleAdmin)
	minRoleTable(t, "view article", permission.CanViewArticle, permission.RoleEditor)
	minRoleTable(t, "select author", permission.CanSelectArticleAuthor, permission.RoleSeniorEditor)
	minRoleTable(t, "review", permission.CanReviewArticles, permission.RoleSeniorEditor)
	minRoleTable(t, "publish", permission.CanPublishArticles, permission.RoleSeniorEditor)
	minRoleTable(t, "assign reviewer", permission.CanAssignReviewer, permission.RoleSeniorEditor)
}

func TestManageAnnouncementsImpliesView(t *testing.T) {
	for _, r := range permission.Roles() {
		if permission.CanManageAnnouncements(r) {
			assert.True(t, permission.CanViewAnnouncements(r), r)
		}
	}
}

func TestCanViewApprovalHistory(t *testing.T) {
	own := &permission.ArticleRef{UserID: "u1", Status: permission.StatusDraft}

	assert.True(t, permission.CanViewApprovalHistory(permission.RoleSeniorEditor, nil, ""))
	assert.True(t, permission.CanViewApprovalHistory(permission.RoleUser, own, "u1"))
	assert.False(t, permission.CanViewApprovalHistory(permission.RoleEditor, own, "u2"))
	assert.False(t, permission.CanViewApprovalHistory(permission.RoleEditor, nil, "u1"))
	assert.False(t, permission.CanViewApprovalHistory(permission.RoleEditor, &permission.ArticleRef{}, ""))
}

func TestCanEditArticle(t *testing.T) {
	draft := &permission.ArticleRef{UserID: "u1", Status: permission.StatusDraft}
	published := &permission.ArticleRef{UserID: "u1", Status: permission.StatusPublished}

	assert.False(t, permission.CanEditArticle(permission.RoleEditor, published, "u1"))
	assert.True(t, permission.CanEditArticle(permission.RoleEditor, draft, "u1"))
	assert.False(t, permission.CanEditArticle(permission.RoleEditor, draft, "u2"))
	assert.True(t, permission.CanEditArticle(permission.RoleEditor,
		&permission.ArticleRef{UserID: "u1", Status: permission.StatusNeedsChanges}, "u1"))

	// the owner branch is reserved to EDITOR exactly
	assert.False(t, permission.CanEditArticle(permission.RoleUser, draft, "u1"))
	assert.False(t, permission.CanEditArticle(permission.RoleModerator, draft, "u1"))

	assert.True(t, permission.CanEditArticle(permission.RoleSeniorEditor, published, "u9"))
	assert.True(t, permission.CanEditArticle(permission.RoleSysadmin, nil, ""))
	assert.False(t, permission.CanEditArticle(permission.RoleEditor, nil, "u1"))
	assert.False(t, permission.CanEditArticle("", draft, "u1"))
}

func TestCanDeleteArticles(t *testing.T) {
	draft := &permission.ArticleRef{UserID: "u1", Status: permission.StatusDraft}
	pending := &permission.ArticleRef{UserID: "u1", Status: permission.StatusPendingApproval}

	assert.True(t, permission.CanDeleteArticles(permission.RoleSeniorEditor, pending, "u2"))
	assert.True(t, permission.CanDeleteArticles(permission.RoleAdmin, nil, ""))
	assert.True(t, permission.CanDeleteArticles(permission.RoleEditor, draft, "u1"))
	assert.False(t, permission.CanDeleteArticles(permission.RoleEditor, pending, "u1"))
	assert.False(t, permission.CanDeleteArticles(permission.RoleEditor, draft, "u2"))
	assert.False(t, permission.CanDeleteArticles(permission.RoleEditor, nil, "u1"))

	// owners of drafts may always discard them, whatever their role
	assert.True(t, permission.CanDeleteArticles(permission.RoleUser, draft, "u1"))
	assert.True(t, permission.CanDeleteArticles("", draft, "u1"))
	assert.False(t, permission.CanDeleteArticles(permission.RoleUser, draft, ""))
}

func TestCanToggleUserStatus(t *testing.T) {
	admin := permission.Principal{ID: "a", Role: permission.RoleAdmin}
	sys := permission.Principal{ID: "s", Role: permission.RoleSysadmin}
	editor := permission.Principal{ID: "e", Role: permission.RoleEditor}
	otherAdmin := permission.Principal{ID: "a2", Role: permission.RoleAdmin}

	assert.True(t, permission.CanToggleUserStatus(admin, editor))
	assert.False(t, permission.CanToggleUserStatus(admin, otherAdmin))
	assert.False(t, permission.CanToggleUserStatus(admin, sys))
	assert.False(t, permission.CanToggleUserStatus(admin, admin))
	assert.True(t, permission.CanToggleUserStatus(sys, otherAdmin))
	assert.True(t, permission.CanToggleUserStatus(sys, permission.Principal{ID: "s2", Role: permission.RoleSysadmin}))
	assert.False(t, permission.CanToggleUserStatus(sys, sys))
	assert.False(t, permission.CanToggleUserStatus(editor, permission.Principal{ID: "u", Role: permission.RoleUser}))
	assert.False(t, permission.CanToggleUserStatus(permission.Principal{Role: permission.RoleAdmin}, editor))
}

func TestCanChangeUserRole(t *testing.T) {
	admin := permission.Principal{ID: "a", Role: permission.RoleAdmin}
	sys := permission.Principal{ID: "s", Role: permission.RoleSysadmin}
	user := permission.Principal{ID: "u", Role: permission.RoleUser}

	assert.True(t, permission.CanChangeUserRole(admin, user, permission.RoleSeniorEditor))
	assert.False(t, permission.CanChangeUserRole(admin, user, permission.RoleAdmin))
	assert.False(t, permission.CanChangeUserRole(admin, user, permission.RoleSysadmin))
	assert.False(t, permission.CanChangeUserRole(admin, user, "OWNER"))
	assert.True(t, permission.CanChangeUserRole(sys, user, permission.RoleSysadmin))
	assert.False(t, permission.CanChangeUserRole(sys, sys, permission.RoleUser))
}

func TestPredicatesAreIdempotent(t *testing.T) {
	ref := &permission.ArticleRef{UserID: "u1", Status: permission.StatusDraft}
	for _, r := range append(permission.Roles(), "") {
		assert.Equal(t, permission.CanEditArticle(r, ref, "u1"), permission.CanEditArticle(r, ref, "u1"))
		assert.Equal(t, permission.CanDeleteArticles(r, ref, "u1"), permission.CanDeleteArticles(r, ref, "u1"))
		assert.Equal(t, permission.CanViewApprovalHistory(r, ref, "u2"), permission.CanViewApprovalHistory(r, ref, "u2"))
		assert.Equal(t, permission.CanBroadcastNotifications(r), permission.CanBroadcastNotifications(r))
		for _, from := range permission.Statuses() {
			for _, to := range permission.Statuses() {
				assert.Equal(t,
					permission.CanTransitionToStatus(from, to, r),
					permission.CanTransitionToStatus(from, to, r))
			}
		}
	}
	assert.Equal(t, *ref, permission.ArticleRef{UserID: "u1", Status: permission.StatusDraft})
}

package permission

// ArticleRef is the part of an article that ownership rules look at.
// A nil *ArticleRef means the article is unknown to the caller.
type ArticleRef struct {
	UserID string
	Status ArticleStatus
}

func ownedBy(article *ArticleRef, userID string) bool {
	return article != nil && userID != "" && article.UserID == userID
}

func CanViewAnnouncements(role Role) bool {
	return HasSufficientRole(role, RoleEditor)
}

// CanManageAnnouncements covers create, edit, delete and extend.
func CanManageAnnouncements(role Role) bool {
	return HasSufficientRole(role, RoleSeniorEditor)
}

func CanBroadcastNotifications(role Role) bool {
	return HasSufficientRole(role, RoleAdmin)
}

// CanViewArticle grants the back-office view of any article, whatever its status.
func CanViewArticle(role Role) bool {
	return HasSufficientRole(role, RoleEditor)
}

// CanViewApprovalHistory lets reviewers see every history and authors see their own.
func CanViewApprovalHistory(role Role, article *ArticleRef, userID string) bool {
	if HasSufficientRole(role, RoleSeniorEditor) {
		return true
	}
	return ownedBy(article, userID)
}

// CanSelectArticleAuthor allows creating an article on behalf of another user.
func CanSelectArticleAuthor(role Role) bool {
	return HasSufficientRole(role, RoleSeniorEditor)
}

func CanReviewArticles(role Role) bool {
	return HasSufficientRole(role, RoleSeniorEditor)
}

func CanPublishArticles(role Role) bool {
	return HasSufficientRole(role, RoleSeniorEditor)
}

func CanAssignReviewer(role Role) bool {
	return HasSufficientRole(role, RoleSeniorEditor)
}

// CanEditArticle: reviewers edit anything, an EDITOR edits its own articles until they are published.
func CanEditArticle(role Role, article *ArticleRef, userID string) bool {
	if HasSufficientRole(role, RoleSeniorEditor) {
		return true
	}
	return role == RoleEditor && ownedBy(article, userID) && article.Status != StatusPublished
}

// CanDeleteArticles: reviewers delete anything, any owner deletes its own drafts.
// The owner branch has no role floor.
func CanDeleteArticles(role Role, article *ArticleRef, userID string) bool {
	if HasSufficientRole(role, RoleSeniorEditor) {
		return true
	}
	return ownedBy(article, userID) && article.Status == StatusDraft
}

// CanToggleUserStatus decides whether actor may activate or deactivate target.
// Nobody toggles itself, and only a SYSADMIN may toggle an account of equal rank.
func CanToggleUserStatus(actor, target Principal) bool {
	if actor.ID == "" || target.ID == "" || actor.ID == target.ID {
		return false
	}
	if !HasSufficientRole(actor.Role, RoleAdmin) {
		return false
	}
	if actor.Role == RoleSysadmin {
		return true
	}
	return CompareRole(actor.Role, target.Role, OpGreater)
}

// CanChangeUserRole applies the toggle rule and forbids granting a role above the actor's own.
// Only a SYSADMIN may hand out its own rank.
func CanChangeUserRole(actor, target Principal, newRole Role) bool {
	if !newRole.Valid() || !CanToggleUserStatus(actor, target) {
		return false
	}
	if actor.Role == RoleSysadmin {
		return true
	}
	return CompareRole(actor.Role, newRole, OpGreater)
}

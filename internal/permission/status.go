package permission

import (
	"fmt"
	"strings"
)

// ArticleStatus is the position of an article in the editorial workflow.
type ArticleStatus string

const (
	StatusDraft           ArticleStatus = "DRAFT"
	StatusPendingApproval ArticleStatus = "PENDING_APPROVAL"
	StatusNeedsChanges    ArticleStatus = "NEEDS_CHANGES"
	StatusPublished       ArticleStatus = "PUBLISHED"
	StatusArchived        ArticleStatus = "ARCHIVED"
	StatusDeleted         ArticleStatus = "DELETED"
)

// transitions is ordered so that AllowedTransitions is stable.
// ARCHIVED and DELETED have no outgoing edges; deletion is not a transition.
var transitions = map[ArticleStatus][]ArticleStatus{
	StatusDraft:           {StatusPendingApproval, StatusPublished},
	StatusPendingApproval: {StatusPublished, StatusNeedsChanges},
	StatusNeedsChanges:    {StatusPendingApproval},
	StatusPublished:       {StatusArchived},
	StatusArchived:        {},
	StatusDeleted:         {},
}

// Statuses lists every article status.
func Statuses() []ArticleStatus {
	return []ArticleStatus{
		StatusDraft, StatusPendingApproval, StatusNeedsChanges,
		StatusPublished, StatusArchived, StatusDeleted,
	}
}

func (s ArticleStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func ParseArticleStatus(s string) (ArticleStatus, error) {
	st := ArticleStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown article status %q", s)
	}
	return st, nil
}

// AllowedTransitions returns a copy of the statuses reachable from from,
// ignoring who asks.
func AllowedTransitions(from ArticleStatus) []ArticleStatus {
	next := transitions[from]
	out := make([]ArticleStatus, len(next))
	copy(out, next)
	return out
}

func inTable(from, to ArticleStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionToStatus reports whether role may move an article from one status to another.
func CanTransitionToStatus(from, to ArticleStatus, role Role) bool {
	// authors submit their own drafts without review rights
	if from == StatusDraft && to == StatusPendingApproval {
		return HasSufficientRole(role, RoleEditor)
	}

	if !CanReviewArticles(role) {
		return false
	}
	if !inTable(from, to) {
		return false
	}

	switch to {
	case StatusPublished:
		return CanPublishArticles(role)
	case StatusDeleted:
		return CanDeleteArticles(role, nil, "")
	}
	return true
}

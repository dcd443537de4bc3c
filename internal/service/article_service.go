package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
	"github.com/soonland/nexus-gaming/pkg/markdown"
	"github.com/soonland/nexus-gaming/pkg/slug"
	"gorm.io/gorm"
)

const maxSlugAttempts = 50

type CreateArticleRequest struct {
	Title     string   `json:"title" binding:"required,max=255"`
	Content   string   `json:"content" binding:"required"`
	HeroImage string   `json:"hero_image" binding:"omitempty,url"`
	GameIDs   []string `json:"game_ids" binding:"omitempty,dive,uuid"`
	// UserID creates the article on behalf of another author
	UserID string `json:"user_id" binding:"omitempty,uuid"`
}

// UpdateArticleRequest only touches the fields that are present
type UpdateArticleRequest struct {
	Title     *string   `json:"title" binding:"omitempty,min=1,max=255"`
	Content   *string   `json:"content" binding:"omitempty,min=1"`
	HeroImage *string   `json:"hero_image" binding:"omitempty"`
	GameIDs   *[]string `json:"game_ids"`
}

type ChangeStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

type AssignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required,uuid"`
	Comment    string `json:"comment" binding:"max=2000"`
}

type ArticleListFilter struct {
	Status     string
	AuthorID   string
	ReviewerID string
	GameID     string
	Search     string
	Mine       bool
	Page       int
	Limit      int
}

type GameSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type ArticleResponse struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Slug        string                   `json:"slug"`
	Content     string                   `json:"content"`
	ContentHTML string                   `json:"content_html,omitempty"`
	HeroImage   string                   `json:"hero_image,omitempty"`
	Status      permission.ArticleStatus `json:"status"`
	Author      *UserSummary             `json:"author,omitempty"`
	Reviewer    *UserSummary             `json:"reviewer,omitempty"`
	Games       []GameSummary            `json:"games"`
	PublishedAt *string                  `json:"published_at"`
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
}

type ApprovalResponse struct {
	ID         string                   `json:"id"`
	FromStatus permission.ArticleStatus `json:"from_status"`
	ToStatus   permission.ArticleStatus `json:"to_status"`
	Action     string                   `json:"action"`
	Comment    string                   `json:"comment,omitempty"`
	Actor      *UserSummary             `json:"actor,omitempty"`
	CreatedAt  string                   `json:"created_at"`
}

// TransitionsResponse lists what the caller may do next with an article
type TransitionsResponse struct {
	Current   permission.ArticleStatus   `json:"current"`
	Available []permission.ArticleStatus `json:"available"`
	CanEdit   bool                       `json:"can_edit"`
	CanDelete bool                       `json:"can_delete"`
}

func toArticleResponse(a *model.Article) *ArticleResponse {
	res := &ArticleResponse{
		ID:          a.ID.String(),
		Title:       a.Title,
		Slug:        a.Slug,
		Content:     a.Content,
		HeroImage:   a.HeroImage,
		Status:      a.Status,
		Author:      toUserSummary(a.Author),
		Reviewer:    toUserSummary(a.Reviewer),
		Games:       make([]GameSummary, 0, len(a.Games)),
		PublishedAt: formatTimePtr(a.PublishedAt),
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
	for _, g := range a.Games {
		res.Games = append(res.Games, GameSummary{ID: g.ID.String(), Title: g.Title, Slug: g.Slug})
	}
	return res
}

// approvalAction names the history entry written for a transition
func approvalAction(to permission.ArticleStatus) string {
	switch to {
	case permission.StatusPendingApproval:
		return model.ApprovalActionSubmit
	case permission.StatusPublished:
		return model.ApprovalActionPublish
	case permission.StatusNeedsChanges:
		return model.ApprovalActionRequestChanges
	case permission.StatusArchived:
		return model.ApprovalActionArchive
	}
	return string(to)
}

// Notifier is the part of NotificationService the editorial workflow needs
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, in NotifyInput) error
}

type ArticleService interface {
	ListPublished(ctx context.Context, filter ArticleListFilter) ([]ArticleResponse, int64, error)
	GetPublished(ctx context.Context, slug string) (*ArticleResponse, error)
	List(ctx context.Context, p permission.Principal, filter ArticleListFilter) ([]ArticleResponse, int64, error)
	Get(ctx context.Context, p permission.Principal, id string) (*ArticleResponse, error)
	Create(ctx context.Context, p permission.Principal, req CreateArticleRequest) (*ArticleResponse, error)
	Update(ctx context.Context, p permission.Principal, id string, req UpdateArticleRequest) (*ArticleResponse, error)
	Delete(ctx context.Context, p permission.Principal, id string) error
	ChangeStatus(ctx context.Context, p permission.Principal, id string, req ChangeStatusRequest) (*ArticleResponse, error)
	AvailableTransitions(ctx context.Context, p permission.Principal, id string) (*TransitionsResponse, error)
	AssignReviewer(ctx context.Context, p permission.Principal, id string, req AssignReviewerRequest) (*ArticleResponse, error)
	History(ctx context.Context, p permission.Principal, id string) ([]ApprovalResponse, error)
}

type articleService struct {
	articles  repository.ArticleRepository
	approvals repository.ApprovalRepository
	users     repository.UserRepository
	audit     repository.AuditRepository
	tx        repository.TransactionManager
	notifier  Notifier
	now       func() time.Time
}

func NewArticleService(articles repository.ArticleRepository, approvals repository.ApprovalRepository,
	users repository.UserRepository, audit repository.AuditRepository, tx repository.TransactionManager,
	notifier Notifier) ArticleService {
	return &articleService{
		articles:  articles,
		approvals: approvals,
		users:     users,
		audit:     audit,
		tx:        tx,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *articleService) toRepoFilter(f ArticleListFilter) (repository.ArticleFilter, error) {
	var out repository.ArticleFilter
	if f.Status != "" {
		st, err := permission.ParseArticleStatus(f.Status)
		if err != nil {
			return out, bizerror.BadParam("%v", err)
		}
		out.Status = st
	}
	for _, ref := range []struct {
		raw   string
		field string
		dst   **uuid.UUID
	}{
		{f.AuthorID, "author id", &out.AuthorID},
		{f.ReviewerID, "reviewer id", &out.ReviewerID},
		{f.GameID, "game id", &out.GameID},
	} {
		if ref.raw == "" {
			continue
		}
		id, err := parseID(ref.raw, ref.field)
		if err != nil {
			return out, err
		}
		*ref.dst = &id
	}
	out.Search = strings.TrimSpace(f.Search)
	return out, nil
}

func (s *articleService) list(ctx context.Context, f repository.ArticleFilter, pageNum, limit int) ([]ArticleResponse, int64, error) {
	pg := page(pageNum, limit)
	list, total, err := s.articles.List(ctx, f, pg.Page, pg.Limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]ArticleResponse, 0, len(list))
	for i := range list {
		res = append(res, *toArticleResponse(&list[i]))
	}
	return res, total, nil
}

func (s *articleService) ListPublished(ctx context.Context, filter ArticleListFilter) ([]ArticleResponse, int64, error) {
	filter.Status = ""
	f, err := s.toRepoFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	f.Status = permission.StatusPublished
	f.ReviewerID = nil
	return s.list(ctx, f, filter.Page, filter.Limit)
}

func (s *articleService) GetPublished(ctx context.Context, slugValue string) (*ArticleResponse, error) {
	a, err := s.articles.FindPublishedBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	res := toArticleResponse(a)
	res.ContentHTML = markdown.Render(a.Content)
	return res, nil
}

func (s *articleService) List(ctx context.Context, p permission.Principal, filter ArticleListFilter) ([]ArticleResponse, int64, error) {
	if !permission.CanViewArticle(p.Role) {
		return nil, 0, bizerror.Forbidden("back office articles require the EDITOR role")
	}
	f, err := s.toRepoFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	if filter.Mine {
		uid, err := principalID(p)
		if err != nil {
			return nil, 0, err
		}
		f.AuthorID = &uid
	}
	return s.list(ctx, f, filter.Page, filter.Limit)
}

func (s *articleService) Get(ctx context.Context, p permission.Principal, id string) (*ArticleResponse, error) {
	if !permission.CanViewArticle(p.Role) {
		return nil, bizerror.Forbidden("back office articles require the EDITOR role")
	}
	aid, err := parseID(id, "article id")
	if err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, aid)
	if err != nil {
		return nil, err
	}
	res := toArticleResponse(a)
	res.ContentHTML = markdown.Render(a.Content)
	return res, nil
}

// uniqueSlug derives a slug from title that no other article, deleted ones included, uses
func (s *articleService) uniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "article"
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := s.articles.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free slug for %q", bizerror.ErrConflict, base)
}

func (s *articleService) Create(ctx context.Context, p permission.Principal, req CreateArticleRequest) (*ArticleResponse, error) {
	if !permission.HasSufficientRole(p.Role, permission.RoleEditor) {
		return nil, bizerror.Forbidden("writing articles requires the EDITOR role")
	}
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}

	authorID := actorID
	if req.UserID != "" && req.UserID != p.ID {
		if !permission.CanSelectArticleAuthor(p.Role) {
			return nil, bizerror.Forbidden("cannot create an article on behalf of another author")
		}
		authorID, err = parseID(req.UserID, "author id")
		if err != nil {
			return nil, err
		}
		if _, err := s.users.GetByID(ctx, authorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, bizerror.BadParam("author %s does not exist", authorID)
			}
			return nil, err
		}
	}

	gameIDs, err := parseIDs(req.GameIDs, "game id")
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		HeroImage: req.HeroImage,
		Status:    permission.StatusDraft,
		UserID:    authorID,
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		article.Slug, err = s.uniqueSlug(txCtx, article.Title, nil)
		if err != nil {
			return err
		}
		if err := s.articles.Create(txCtx, article); err != nil {
			return err
		}
		if len(gameIDs) > 0 {
			if err := s.articles.ReplaceGames(txCtx, article, gameIDs); err != nil {
				return err
			}
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionCreateArticle, article.ID.String(), article.Title,
			map[string]interface{}{"author_id": authorID.String(), "slug": article.Slug})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, article.ID)
}

func (s *articleService) Update(ctx context.Context, p permission.Principal, id string, req UpdateArticleRequest) (*ArticleResponse, error) {
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(id, "article id")
	if err != nil {
		return nil, err
	}

	var gameIDs []uuid.UUID
	if req.GameIDs != nil {
		if gameIDs, err = parseIDs(*req.GameIDs, "game id"); err != nil {
			return nil, err
		}
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.articles.FindByIDForUpdate(txCtx, aid)
		if err != nil {
			return err
		}
		if !permission.CanEditArticle(p.Role, a.Ref(), p.ID) {
			return bizerror.Forbidden("cannot edit this article")
		}

		changed := []string{}
		if req.Title != nil && strings.TrimSpace(*req.Title) != a.Title {
			a.Title = strings.TrimSpace(*req.Title)
			changed = append(changed, "title")
			// published URLs stay stable
			if a.Status != permission.StatusPublished {
				if a.Slug, err = s.uniqueSlug(txCtx, a.Title, &a.ID); err != nil {
					return err
				}
			}
		}
		if req.Content != nil {
			a.Content = *req.Content
			changed = append(changed, "content")
		}
		if req.HeroImage != nil {
			a.HeroImage = *req.HeroImage
			changed = append(changed, "hero_image")
		}
		if err := s.articles.Update(txCtx, a); err != nil {
			return err
		}
		if req.GameIDs != nil {
			if err := s.articles.ReplaceGames(txCtx, a, gameIDs); err != nil {
				return err
			}
			changed = append(changed, "games")
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionUpdateArticle, a.ID.String(), a.Title,
			map[string]interface{}{"fields": changed})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, aid)
}

func (s *articleService) Delete(ctx context.Context, p permission.Principal, id string) error {
	actorID, err := principalID(p)
	if err != nil {
		return err
	}
	aid, err := parseID(id, "article id")
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.articles.FindByIDForUpdate(txCtx, aid)
		if err != nil {
			return err
		}
		if !permission.CanDeleteArticles(p.Role, a.Ref(), p.ID) {
			return bizerror.Forbidden("cannot delete this article")
		}

		from := a.Status
		a.Status = permission.StatusDeleted
		if err := s.articles.Update(txCtx, a); err != nil {
			return err
		}
		if err := s.articles.SoftDelete(txCtx, a.ID); err != nil {
			return err
		}
		if err := s.approvals.Create(txCtx, &model.ArticleApproval{
			ArticleID:  a.ID,
			FromStatus: from,
			ToStatus:   permission.StatusDeleted,
			Action:     model.ApprovalActionDelete,
			ActorID:    actorID,
		}); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionDeleteArticle, a.ID.String(), a.Title,
			map[string]interface{}{"from": from})
	})
}

func (s *articleService) ChangeStatus(ctx context.Context, p permission.Principal, id string, req ChangeStatusRequest) (*ArticleResponse, error) {
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(id, "article id")
	if err != nil {
		return nil, err
	}
	to, err := permission.ParseArticleStatus(req.Status)
	if err != nil {
		return nil, bizerror.BadParam("%v", err)
	}
	if to == permission.StatusDeleted {
		return nil, bizerror.BadParam("articles are removed with DELETE, not by status")
	}

	var article *model.Article
	var from permission.ArticleStatus
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.articles.FindByIDForUpdate(txCtx, aid)
		if err != nil {
			return err
		}
		from = a.Status

		if !statusIn(permission.AllowedTransitions(from), to) {
			return fmt.Errorf("%w: cannot move an article from %s to %s", bizerror.ErrConflict, from, to)
		}
		if !permission.CanTransitionToStatus(from, to, p.Role) {
			return bizerror.Forbidden("role %s cannot move an article from %s to %s", p.Role, from, to)
		}
		// without review rights only the author may submit a draft
		if !permission.CanReviewArticles(p.Role) && !permission.CanEditArticle(p.Role, a.Ref(), p.ID) {
			return bizerror.Forbidden("only the author can submit this article")
		}

		a.Status = to
		if to == permission.StatusPublished && a.PublishedAt == nil {
			now := s.now()
			a.PublishedAt = &now
		}
		if err := s.articles.Update(txCtx, a); err != nil {
			return err
		}
		if err := s.approvals.Create(txCtx, &model.ArticleApproval{
			ArticleID:  a.ID,
			FromStatus: from,
			ToStatus:   to,
			Action:     approvalAction(to),
			Comment:    req.Comment,
			ActorID:    actorID,
		}); err != nil {
			return err
		}
		article = a
		return recordAudit(txCtx, s.audit, actorID, model.ActionChangeArticleStatus, a.ID.String(), a.Title,
			map[string]interface{}{"from": from, "to": to, "comment": req.Comment})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"article_id": aid, "from": from, "to": to, "actor_id": p.ID}).
		Info("article status changed")

	if article.UserID != actorID {
		s.notify(ctx, article.UserID, NotifyInput{
			Kind:    model.NotificationArticleStatus,
			Title:   fmt.Sprintf("%q is now %s", article.Title, to),
			Message: req.Comment,
			Link:    "/admin/articles/" + article.ID.String(),
		})
	}
	if to == permission.StatusPendingApproval && article.ReviewerID != nil && *article.ReviewerID != actorID {
		s.notify(ctx, *article.ReviewerID, NotifyInput{
			Kind:  model.NotificationReviewRequested,
			Title: fmt.Sprintf("%q is waiting for your review", article.Title),
			Link:  "/admin/articles/" + article.ID.String(),
		})
	}

	return s.reload(ctx, aid)
}

func (s *articleService) AvailableTransitions(ctx context.Context, p permission.Principal, id string) (*TransitionsResponse, error) {
	if !permission.CanViewArticle(p.Role) {
		return nil, bizerror.Forbidden("back office articles require the EDITOR role")
	}
	aid, err := parseID(id, "article id")
	if err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, aid)
	if err != nil {
		return nil, err
	}

	ref := a.Ref()
	res := &TransitionsResponse{
		Current:   a.Status,
		Available: []permission.ArticleStatus{},
		CanEdit:   permission.CanEditArticle(p.Role, ref, p.ID),
		CanDelete: permission.CanDeleteArticles(p.Role, ref, p.ID),
	}
	for _, to := range permission.AllowedTransitions(a.Status) {
		if !permission.CanTransitionToStatus(a.Status, to, p.Role) {
			continue
		}
		if !permission.CanReviewArticles(p.Role) && !res.CanEdit {
			continue
		}
		res.Available = append(res.Available, to)
	}
	return res, nil
}

func (s *articleService) AssignReviewer(ctx context.Context, p permission.Principal, id string, req AssignReviewerRequest) (*ArticleResponse, error) {
	if !permission.CanAssignReviewer(p.Role) {
		return nil, bizerror.Forbidden("assigning reviewers requires the SENIOR_EDITOR role")
	}
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(id, "article id")
	if err != nil {
		return nil, err
	}
	rid, err := parseID(req.ReviewerID, "reviewer id")
	if err != nil {
		return nil, err
	}

	reviewer, err := s.users.GetByID(ctx, rid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.BadParam("reviewer %s does not exist", rid)
		}
		return nil, err
	}
	if !reviewer.IsActive || !permission.CanReviewArticles(reviewer.Role) {
		return nil, bizerror.BadParam("reviewer must be an active SENIOR_EDITOR or above")
	}

	var article *model.Article
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.articles.FindByIDForUpdate(txCtx, aid)
		if err != nil {
			return err
		}
		a.ReviewerID = &reviewer.ID
		if err := s.articles.Update(txCtx, a); err != nil {
			return err
		}
		if err := s.approvals.Create(txCtx, &model.ArticleApproval{
			ArticleID:  a.ID,
			FromStatus: a.Status,
			ToStatus:   a.Status,
			Action:     model.ApprovalActionAssignReviewer,
			Comment:    req.Comment,
			ActorID:    actorID,
		}); err != nil {
			return err
		}
		article = a
		return recordAudit(txCtx, s.audit, actorID, model.ActionAssignReviewer, a.ID.String(), a.Title,
			map[string]interface{}{"reviewer_id": reviewer.ID.String()})
	})
	if err != nil {
		return nil, err
	}

	if reviewer.ID != actorID {
		s.notify(ctx, reviewer.ID, NotifyInput{
			Kind:    model.NotificationReviewRequested,
			Title:   fmt.Sprintf("You were assigned to review %q", article.Title),
			Message: req.Comment,
			Link:    "/admin/articles/" + article.ID.String(),
		})
	}
	return s.reload(ctx, aid)
}

func (s *articleService) History(ctx context.Context, p permission.Principal, id string) ([]ApprovalResponse, error) {
	aid, err := parseID(id, "article id")
	if err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, aid)
	if err != nil {
		return nil, err
	}
	if !permission.CanViewApprovalHistory(p.Role, a.Ref(), p.ID) {
		return nil, bizerror.Forbidden("cannot view the history of this article")
	}

	entries, err := s.approvals.ListByArticle(ctx, aid)
	if err != nil {
		return nil, err
	}
	res := make([]ApprovalResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		res = append(res, ApprovalResponse{
			ID:         e.ID.String(),
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Action:     e.Action,
			Comment:    e.Comment,
			Actor:      toUserSummary(e.Actor),
			CreatedAt:  formatTime(e.CreatedAt),
		})
	}
	return res, nil
}

func (s *articleService) reload(ctx context.Context, id uuid.UUID) (*ArticleResponse, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toArticleResponse(a), nil
}

// notify never fails the request: the workflow change is already committed
func (s *articleService) notify(ctx context.Context, userID uuid.UUID, in NotifyInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, in); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to deliver notification")
	}
}

func statusIn(list []permission.ArticleStatus, s permission.ArticleStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
	"gorm.io/gorm"
)

type fakeTx struct{ calls int }

func (f *fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.User
	gets  int
	locks int
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	f.locks++
	f.mu.Unlock()
	return f.GetByID(ctx, id)
}

func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return strings.EqualFold(u.Username, username) })
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter, _, _ int) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []uuid.UUID{}
	for id, u := range f.byID {
		if u.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

type fakeTokens struct {
	tokens map[string]model.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]model.RefreshToken{}}
}

func (f *fakeTokens) Create(_ context.Context, t *model.RefreshToken) error {
	f.tokens[t.Token] = *t
	return nil
}

func (f *fakeTokens) FindValid(_ context.Context, token string, now time.Time) (*model.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok || !t.ExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (f *fakeTokens) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokens) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

type fakeAudit struct {
	entries []model.AuditLog
}

func (f *fakeAudit) Log(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudit) List(_ context.Context, filter repository.AuditFilter, _, _ int) ([]model.AuditLog, int64, error) {
	out := []model.AuditLog{}
	for _, e := range f.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAudit) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeArticles struct {
	byID    map[uuid.UUID]*model.Article
	deleted map[uuid.UUID]*model.Article
	users   *fakeUsers
	locks   int
}

func newFakeArticles(users *fakeUsers) *fakeArticles {
	return &fakeArticles{byID: map[uuid.UUID]*model.Article{}, deleted: map[uuid.UUID]*model.Article{}, users: users}
}

func (f *fakeArticles) put(a *model.Article) *model.Article {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	f.byID[a.ID] = &cp
	return a
}

func (f *fakeArticles) Create(_ context.Context, a *model.Article) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.put(a)
	return nil
}

func (f *fakeArticles) Update(_ context.Context, a *model.Article) error {
	if _, ok := f.byID[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Author, cp.Reviewer = nil, nil
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticles) SoftDelete(_ context.Context, id uuid.UUID) error {
	if a, ok := f.byID[id]; ok {
		f.deleted[id] = a
		delete(f.byID, id)
	}
	return nil
}

func (f *fakeArticles) withRelations(a *model.Article) *model.Article {
	cp := *a
	if f.users != nil {
		if u, ok := f.users.byID[cp.UserID]; ok {
			cp.Author = u
		}
		if cp.ReviewerID != nil {
			if u, ok := f.users.byID[*cp.ReviewerID]; ok {
				cp.Reviewer = u
			}
		}
	}
	return &cp
}

func (f *fakeArticles) FindByID(_ context.Context, id uuid.UUID) (*model.Article, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.withRelations(a), nil
}

func (f *fakeArticles) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	f.locks++
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArticles) FindPublishedBySlug(_ context.Context, slug string) (*model.Article, error) {
	for _, a := range f.byID {
		if a.Slug == slug && a.Status == permission.StatusPublished {
			return f.withRelations(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeArticles) SlugExists(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	for _, set := range []map[uuid.UUID]*model.Article{f.byID, f.deleted} {
		for id, a := range set {
			if a.Slug == slug && (excludeID == nil || id != *excludeID) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeArticles) List(_ context.Context, filter repository.ArticleFilter, _, _ int) ([]model.Article, int64, error) {
	out := []model.Article{}
	for _, a := range f.byID {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.AuthorID != nil && a.UserID != *filter.AuthorID {
			continue
		}
		if filter.ReviewerID != nil && (a.ReviewerID == nil || *a.ReviewerID != *filter.ReviewerID) {
			continue
		}
		out = append(out, *f.withRelations(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, int64(len(out)), nil
}

func (f *fakeArticles) ReplaceGames(_ context.Context, a *model.Article, gameIDs []uuid.UUID) error {
	games := make([]model.Game, 0, len(gameIDs))
	for _, id := range gameIDs {
		games = append(games, model.Game{ID: id, Title: "game " + id.String()[:4]})
	}
	a.Games = games
	if stored, ok := f.byID[a.ID]; ok {
		stored.Games = games
	}
	return nil
}

type fakeApprovals struct {
	entries []model.ArticleApproval
}

func (f *fakeApprovals) Create(_ context.Context, e *model.ArticleApproval) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeApprovals) ListByArticle(_ context.Context, articleID uuid.UUID) ([]model.ArticleApproval, error) {
	out := []model.ArticleApproval{}
	for _, e := range f.entries {
		if e.ArticleID == articleID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAnnouncements struct {
	byID map[uuid.UUID]*model.Announcement
}

func newFakeAnnouncements() *fakeAnnouncements {
	return &fakeAnnouncements{byID: map[uuid.UUID]*model.Announcement{}}
}

func (f *fakeAnnouncements) Create(_ context.Context, a *model.Announcement) error {
	a.ID = uuid.New()
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncements) Update(_ context.Context, a *model.Announcement) error {
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncements) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAnnouncements) FindByID(_ context.Context, id uuid.UUID) (*model.Announcement, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnnouncements) ListVisible(_ context.Context, now time.Time) ([]model.Announcement, error) {
	out := []model.Announcement{}
	for _, a := range f.byID {
		if a.Visible(now) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAnnouncements) ListAll(_ context.Context) ([]model.Announcement, error) {
	out := []model.Announcement{}
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

type fakeNotifications struct {
	list []model.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	f.list = append(f.list, *n)
	return nil
}

func (f *fakeNotifications) CreateBatch(ctx context.Context, list []model.Notification) error {
	for i := range list {
		if err := f.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, _, _ int) ([]model.Notification, int64, error) {
	out := []model.Notification{}
	for _, n := range f.list {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	_, n, err := f.ListByUser(ctx, userID, true, 1, 100)
	return n, err
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for i := range f.list {
		if f.list[i].ID == id && f.list[i].UserID == userID {
			f.list[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for i := range f.list {
		if f.list[i].UserID == userID && !f.list[i].IsRead {
			f.list[i].IsRead = true
			n++
		}
	}
	return n, nil
}

type fakePusher struct {
	mu        sync.Mutex
	toUser    map[string]int
	broadcast int
}

func newFakePusher() *fakePusher {
	return &fakePusher{toUser: map[string]int{}}
}

func (f *fakePusher) SendToUser(userID string, _ []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toUser[userID]++
}

func (f *fakePusher) Broadcast(_ []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast++
}

type sentNotification struct {
	userID uuid.UUID
	in     NotifyInput
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, in NotifyInput) error {
	f.sent = append(f.sent, sentNotification{userID: userID, in: in})
	return nil
}

func newUser(role permission.Role) *model.User {
	id := uuid.New()
	return &model.User{
		ID:       id,
		Username: strings.ToLower(string(role)) + "-" + id.String()[:6],
		Email:    id.String()[:8] + "@nexus.test",
		Role:     role,
		IsActive: true,
	}
}

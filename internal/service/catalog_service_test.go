package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGames struct {
	byID      map[uuid.UUID]*model.Game
	platforms map[uuid.UUID][]model.Platform
}

func newFakeGames() *fakeGames {
	return &fakeGames{byID: map[uuid.UUID]*model.Game{}, platforms: map[uuid.UUID][]model.Platform{}}
}

func (f *fakeGames) Create(_ context.Context, g *model.Game) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGames) Update(_ context.Context, g *model.Game) error {
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGames) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeGames) FindByID(_ context.Context, id uuid.UUID) (*model.Game, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	cp.Platforms = f.platforms[id]
	return &cp, nil
}

func (f *fakeGames) FindBySlug(ctx context.Context, slug string) (*model.Game, error) {
	for id, g := range f.byID {
		if g.Slug == slug {
			return f.FindByID(ctx, id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGames) List(_ context.Context, filter repository.GameFilter, _, _ int) ([]model.Game, int64, error) {
	out := []model.Game{}
	for _, g := range f.byID {
		if filter.Genre != "" && g.Genre != filter.Genre {
			continue
		}
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

func (f *fakeGames) ReplacePlatforms(_ context.Context, g *model.Game, platforms []model.Platform) error {
	f.platforms[g.ID] = platforms
	return nil
}

type fakePlatforms struct {
	byID map[uuid.UUID]*model.Platform
}

func (f *fakePlatforms) Create(_ context.Context, p *model.Platform) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePlatforms) Update(_ context.Context, p *model.Platform) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePlatforms) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakePlatforms) FindByID(_ context.Context, id uuid.UUID) (*model.Platform, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlatforms) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Platform, error) {
	out := []model.Platform{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlatforms) List(context.Context) ([]model.Platform, error) {
	out := []model.Platform{}
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

type fakeCompanies struct {
	byID map[uuid.UUID]*model.Company
}

func (f *fakeCompanies) Create(_ context.Context, c *model.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCompanies) Update(_ context.Context, c *model.Company) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCompanies) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeCompanies) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanies) List(context.Context, string, int, int) ([]model.Company, int64, error) {
	out := []model.Company{}
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

type catalogFixture struct {
	svc       CatalogService
	games     *fakeGames
	platforms *fakePlatforms
	companies *fakeCompanies
	audit     *fakeAudit
	editor    permission.Principal
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		games:     newFakeGames(),
		platforms: &fakePlatforms{byID: map[uuid.UUID]*model.Platform{}},
		companies: &fakeCompanies{byID: map[uuid.UUID]*model.Company{}},
		audit:     &fakeAudit{},
		editor:    newUser(permission.RoleEditor).Principal(),
	}
	f.svc = NewCatalogService(f.games, f.platforms, f.companies, f.audit, &fakeTx{})
	return f
}

func TestCreateGame(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	studio, err := f.svc.CreateCompany(ctx, CompanyRequest{Name: "Team Cherry", IsDeveloper: true})
	require.NoError(t, err)
	pc, err := f.svc.CreatePlatform(ctx, PlatformRequest{Name: "PC"})
	require.NoError(t, err)

	game, err := f.svc.CreateGame(ctx, f.editor, GameRequest{
		Title:       "Hollow Knight",
		Price:       decimal.RequireFromString("14.995"),
		DeveloperID: studio.ID,
		PlatformIDs: []string{pc.ID, pc.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "hollow-knight", game.Slug)
	assert.Equal(t, "15.00", game.Price)
	require.Len(t, game.Platforms, 1)
	assert.Equal(t, "PC", game.Platforms[0].Name)
	assert.Equal(t, []string{model.ActionCreateGame}, f.audit.actions())

	// same title, new slug
	second, err := f.svc.CreateGame(ctx, f.editor, GameRequest{Title: "Hollow Knight"})
	require.NoError(t, err)
	assert.Equal(t, "hollow-knight-2", second.Slug)

	bySlug, err := f.svc.GetGame(ctx, "hollow-knight")
	require.NoError(t, err)
	assert.Equal(t, game.ID, bySlug.ID)
}

func TestCreateGameRejectsBadReferences(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	var bad *bizerror.ErrBadParam

	_, err := f.svc.CreateGame(ctx, f.editor, GameRequest{Title: "Celeste", DeveloperID: uuid.NewString()})
	assert.True(t, errors.As(err, &bad))

	_, err = f.svc.CreateGame(ctx, f.editor, GameRequest{Title: "Celeste", PlatformIDs: []string{uuid.NewString()}})
	assert.True(t, errors.As(err, &bad))

	_, err = f.svc.CreateGame(ctx, f.editor, GameRequest{Title: "Celeste", Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.As(err, &bad))

	assert.Empty(t, f.games.byID)
	assert.Empty(t, f.audit.entries)
}

func TestUpdateGameKeepsSlugUnlessRenamed(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	game, err := f.svc.CreateGame(ctx, f.editor, GameRequest{Title: "Celeste", Genre: "platformer"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateGame(ctx, f.editor, game.ID, GameRequest{Title: "Celeste", Genre: "indie"})
	require.NoError(t, err)
	assert.Equal(t, "celeste", updated.Slug)
	assert.Equal(t, "indie", updated.Genre)

	renamed, err := f.svc.UpdateGame(ctx, f.editor, game.ID, GameRequest{Title: "Celeste Classic"})
	require.NoError(t, err)
	assert.Equal(t, "celeste-classic", renamed.Slug)
}

func TestDeleteGameNeedsSeniorEditor(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	game, err := f.svc.CreateGame(ctx, f.editor, GameRequest{Title: "Tunic"})
	require.NoError(t, err)

	err = f.svc.DeleteGame(ctx, f.editor, game.ID)
	assert.ErrorIs(t, err, bizerror.ErrForbidden)

	senior := newUser(permission.RoleSeniorEditor).Principal()
	require.NoError(t, f.svc.DeleteGame(ctx, senior, game.ID))
	assert.Empty(t, f.games.byID)
	assert.Equal(t, []string{model.ActionCreateGame, model.ActionDeleteGame}, f.audit.actions())

	_, err = f.svc.GetGame(ctx, game.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

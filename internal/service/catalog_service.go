package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
	"github.com/soonland/nexus-gaming/pkg/slug"
	"gorm.io/gorm"
)

type CompanyRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Country     string `json:"country" binding:"max=100"`
	Website     string `json:"website" binding:"omitempty,url"`
	IsDeveloper bool   `json:"is_developer"`
	IsPublisher bool   `json:"is_publisher"`
}

type PlatformRequest struct {
	Name         string     `json:"name" binding:"required,max=100"`
	Manufacturer string     `json:"manufacturer" binding:"max=100"`
	ReleaseDate  *time.Time `json:"release_date"`
}

type GameRequest struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description"`
	Genre       string          `json:"genre" binding:"max=50"`
	CoverImage  string          `json:"cover_image" binding:"omitempty,url"`
	ReleaseDate *time.Time      `json:"release_date"`
	Price       decimal.Decimal `json:"price"`
	DeveloperID string          `json:"developer_id" binding:"omitempty,uuid"`
	PublisherID string          `json:"publisher_id" binding:"omitempty,uuid"`
	PlatformIDs []string        `json:"platform_ids" binding:"omitempty,dive,uuid"`
}

type GameListFilter struct {
	Search     string
	Genre      string
	PlatformID string
	CompanyID  string
	Page       int
	Limit      int
}

type CompanyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country,omitempty"`
	Website     string `json:"website,omitempty"`
	IsDeveloper bool   `json:"is_developer"`
	IsPublisher bool   `json:"is_publisher"`
}

type PlatformResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	ReleaseDate  *string `json:"release_date,omitempty"`
}

type GameResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Description string             `json:"description,omitempty"`
	Genre       string             `json:"genre,omitempty"`
	CoverImage  string             `json:"cover_image,omitempty"`
	ReleaseDate *string            `json:"release_date,omitempty"`
	Price       string             `json:"price"`
	Developer   *CompanyResponse   `json:"developer,omitempty"`
	Publisher   *CompanyResponse   `json:"publisher,omitempty"`
	Platforms   []PlatformResponse `json:"platforms"`
}

func toCompanyResponse(c *model.Company) *CompanyResponse {
	if c == nil {
		return nil
	}
	return &CompanyResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Country:     c.Country,
		Website:     c.Website,
		IsDeveloper: c.IsDeveloper,
		IsPublisher: c.IsPublisher,
	}
}

func toPlatformResponse(p *model.Platform) PlatformResponse {
	return PlatformResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Manufacturer: p.Manufacturer,
		ReleaseDate:  formatTimePtr(p.ReleaseDate),
	}
}

func toGameResponse(g *model.Game) *GameResponse {
	res := &GameResponse{
		ID:          g.ID.String(),
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		Genre:       g.Genre,
		CoverImage:  g.CoverImage,
		ReleaseDate: formatTimePtr(g.ReleaseDate),
		Price:       g.Price.StringFixed(2),
		Developer:   toCompanyResponse(g.Developer),
		Publisher:   toCompanyResponse(g.Publisher),
		Platforms:   make([]PlatformResponse, 0, len(g.Platforms)),
	}
	for i := range g.Platforms {
		res.Platforms = append(res.Platforms, toPlatformResponse(&g.Platforms[i]))
	}
	return res
}

// CatalogService manages the games articles can reference, with their platforms and companies
type CatalogService interface {
	ListGames(ctx context.Context, filter GameListFilter) ([]GameResponse, int64, error)
	GetGame(ctx context.Context, idOrSlug string) (*GameResponse, error)
	CreateGame(ctx context.Context, p permission.Principal, req GameRequest) (*GameResponse, error)
	UpdateGame(ctx context.Context, p permission.Principal, id string, req GameRequest) (*GameResponse, error)
	DeleteGame(ctx context.Context, p permission.Principal, id string) error

	ListPlatforms(ctx context.Context) ([]PlatformResponse, error)
	CreatePlatform(ctx context.Context, req PlatformRequest) (*PlatformResponse, error)
	UpdatePlatform(ctx context.Context, id string, req PlatformRequest) (*PlatformResponse, error)
	DeletePlatform(ctx context.Context, id string) error

	ListCompanies(ctx context.Context, search string, page, limit int) ([]CompanyResponse, int64, error)
	GetCompany(ctx context.Context, id string) (*CompanyResponse, error)
	CreateCompany(ctx context.Context, req CompanyRequest) (*CompanyResponse, error)
	UpdateCompany(ctx context.Context, id string, req CompanyRequest) (*CompanyResponse, error)
	DeleteCompany(ctx context.Context, id string) error
}

type catalogService struct {
	games     repository.GameRepository
	platforms repository.PlatformRepository
	companies repository.CompanyRepository
	audit     repository.AuditRepository
	tx        repository.TransactionManager
}

func NewCatalogService(games repository.GameRepository, platforms repository.PlatformRepository,
	companies repository.CompanyRepository, audit repository.AuditRepository, tx repository.TransactionManager) CatalogService {
	return &catalogService{games: games, platforms: platforms, companies: companies, audit: audit, tx: tx}
}

func (s *catalogService) ListGames(ctx context.Context, filter GameListFilter) ([]GameResponse, int64, error) {
	f := repository.GameFilter{Search: strings.TrimSpace(filter.Search), Genre: filter.Genre}
	if filter.PlatformID != "" {
		id, err := parseID(filter.PlatformID, "platform id")
		if err != nil {
			return nil, 0, err
		}
		f.PlatformID = &id
	}
	if filter.CompanyID != "" {
		id, err := parseID(filter.CompanyID, "company id")
		if err != nil {
			return nil, 0, err
		}
		f.CompanyID = &id
	}

	pg := page(filter.Page, filter.Limit)
	list, total, err := s.games.List(ctx, f, pg.Page, pg.Limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]GameResponse, 0, len(list))
	for i := range list {
		res = append(res, *toGameResponse(&list[i]))
	}
	return res, total, nil
}

func (s *catalogService) GetGame(ctx context.Context, idOrSlug string) (*GameResponse, error) {
	var g *model.Game
	var err error
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		g, err = s.games.FindByID(ctx, id)
	} else {
		g, err = s.games.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	return toGameResponse(g), nil
}

func (s *catalogService) companyRef(ctx context.Context, raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, field)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.BadParam("%s %s does not exist", field, id)
		}
		return nil, err
	}
	return &id, nil
}

func (s *catalogService) uniqueGameSlug(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "game"
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		existing, err := s.games.FindBySlug(ctx, candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == excludeID {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free slug for %q", bizerror.ErrConflict, base)
}

// applyGame copies req onto g and resolves its references
func (s *catalogService) applyGame(ctx context.Context, g *model.Game, req GameRequest) ([]model.Platform, error) {
	if req.Price.IsNegative() {
		return nil, bizerror.BadParam("price cannot be negative")
	}
	developerID, err := s.companyRef(ctx, req.DeveloperID, "developer")
	if err != nil {
		return nil, err
	}
	publisherID, err := s.companyRef(ctx, req.PublisherID, "publisher")
	if err != nil {
		return nil, err
	}
	platformIDs, err := parseIDs(req.PlatformIDs, "platform id")
	if err != nil {
		return nil, err
	}
	platforms := []model.Platform{}
	if len(platformIDs) > 0 {
		if platforms, err = s.platforms.FindByIDs(ctx, platformIDs); err != nil {
			return nil, err
		}
		if len(platforms) != len(platformIDs) {
			return nil, bizerror.BadParam("unknown platform in platform_ids")
		}
	}

	g.Title = strings.TrimSpace(req.Title)
	g.Description = req.Description
	g.Genre = req.Genre
	g.CoverImage = req.CoverImage
	g.ReleaseDate = req.ReleaseDate
	g.Price = req.Price.Round(2)
	g.DeveloperID = developerID
	g.PublisherID = publisherID
	return platforms, nil
}

func (s *catalogService) CreateGame(ctx context.Context, p permission.Principal, req GameRequest) (*GameResponse, error) {
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}

	g := &model.Game{}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		platforms, err := s.applyGame(txCtx, g, req)
		if err != nil {
			return err
		}
		if g.Slug, err = s.uniqueGameSlug(txCtx, g.Title, uuid.Nil); err != nil {
			return err
		}
		if err := s.games.Create(txCtx, g); err != nil {
			return err
		}
		if err := s.games.ReplacePlatforms(txCtx, g, platforms); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionCreateGame, g.ID.String(), g.Title, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.GetGame(ctx, g.ID.String())
}

func (s *catalogService) UpdateGame(ctx context.Context, p permission.Principal, id string, req GameRequest) (*GameResponse, error) {
	gid, err := parseID(id, "game id")
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		g, err := s.games.FindByID(txCtx, gid)
		if err != nil {
			return err
		}
		previousTitle := g.Title
		platforms, err := s.applyGame(txCtx, g, req)
		if err != nil {
			return err
		}
		if g.Title != previousTitle {
			if g.Slug, err = s.uniqueGameSlug(txCtx, g.Title, g.ID); err != nil {
				return err
			}
		}
		// drop preloaded relations so Save writes the new foreign keys only
		g.Developer, g.Publisher = nil, nil
		if err := s.games.Update(txCtx, g); err != nil {
			return err
		}
		return s.games.ReplacePlatforms(txCtx, g, platforms)
	})
	if err != nil {
		return nil, err
	}
	return s.GetGame(ctx, gid.String())
}

func (s *catalogService) DeleteGame(ctx context.Context, p permission.Principal, id string) error {
	if !permission.HasSufficientRole(p.Role, permission.RoleSeniorEditor) {
		return bizerror.Forbidden("deleting games requires the SENIOR_EDITOR role")
	}
	actorID, err := principalID(p)
	if err != nil {
		return err
	}
	gid, err := parseID(id, "game id")
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		g, err := s.games.FindByID(txCtx, gid)
		if err != nil {
			return err
		}
		if err := s.games.Delete(txCtx, gid); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionDeleteGame, gid.String(), g.Title, nil)
	})
}

func (s *catalogService) ListPlatforms(ctx context.Context) ([]PlatformResponse, error) {
	list, err := s.platforms.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]PlatformResponse, 0, len(list))
	for i := range list {
		res = append(res, toPlatformResponse(&list[i]))
	}
	return res, nil
}

func (s *catalogService) CreatePlatform(ctx context.Context, req PlatformRequest) (*PlatformResponse, error) {
	pl := &model.Platform{Name: strings.TrimSpace(req.Name), Manufacturer: req.Manufacturer, ReleaseDate: req.ReleaseDate}
	if err := s.platforms.Create(ctx, pl); err != nil {
		return nil, err
	}
	res := toPlatformResponse(pl)
	return &res, nil
}

func (s *catalogService) UpdatePlatform(ctx context.Context, id string, req PlatformRequest) (*PlatformResponse, error) {
	pid, err := parseID(id, "platform id")
	if err != nil {
		return nil, err
	}
	pl, err := s.platforms.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	pl.Name = strings.TrimSpace(req.Name)
	pl.Manufacturer = req.Manufacturer
	pl.ReleaseDate = req.ReleaseDate
	if err := s.platforms.Update(ctx, pl); err != nil {
		return nil, err
	}
	res := toPlatformResponse(pl)
	return &res, nil
}

func (s *catalogService) DeletePlatform(ctx context.Context, id string) error {
	pid, err := parseID(id, "platform id")
	if err != nil {
		return err
	}
	if _, err := s.platforms.FindByID(ctx, pid); err != nil {
		return err
	}
	return s.platforms.Delete(ctx, pid)
}

func (s *catalogService) ListCompanies(ctx context.Context, search string, pageNum, limit int) ([]CompanyResponse, int64, error) {
	pg := page(pageNum, limit)
	list, total, err := s.companies.List(ctx, strings.TrimSpace(search), pg.Page, pg.Limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]CompanyResponse, 0, len(list))
	for i := range list {
		res = append(res, *toCompanyResponse(&list[i]))
	}
	return res, total, nil
}

func (s *catalogService) GetCompany(ctx context.Context, id string) (*CompanyResponse, error) {
	cid, err := parseID(id, "company id")
	if err != nil {
		return nil, err
	}
	c, err := s.companies.FindByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(c), nil
}

func (s *catalogService) CreateCompany(ctx context.Context, req CompanyRequest) (*CompanyResponse, error) {
	c := &model.Company{
		Name:        strings.TrimSpace(req.Name),
		Country:     req.Country,
		Website:     req.Website,
		IsDeveloper: req.IsDeveloper,
		IsPublisher: req.IsPublisher,
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCompanyResponse(c), nil
}

func (s *catalogService) UpdateCompany(ctx context.Context, id string, req CompanyRequest) (*CompanyResponse, error) {
	cid, err := parseID(id, "company id")
	if err != nil {
		return nil, err
	}
	c, err := s.companies.FindByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Country = req.Country
	c.Website = req.Website
	c.IsDeveloper = req.IsDeveloper
	c.IsPublisher = req.IsPublisher
	if err := s.companies.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCompanyResponse(c), nil
}

func (s *catalogService) DeleteCompany(ctx context.Context, id string) error {
	cid, err := parseID(id, "company id")
	if err != nil {
		return err
	}
	if _, err := s.companies.FindByID(ctx, cid); err != nil {
		return err
	}
	return s.companies.Delete(ctx, cid)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/soonland/nexus-gaming/internal/model"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	Update(ctx context.Context, c *model.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error)
}

type PlatformRepository interface {
	Create(ctx context.Context, p *model.Platform) error
	Update(ctx context.Context, p *model.Platform) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Platform, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Platform, error)
	List(ctx context.Context) ([]model.Platform, error)
}

// GameFilter narrows the game listing; zero values mean "any"
type GameFilter struct {
	Search     string
	Genre      string
	PlatformID *uuid.UUID
	CompanyID  *uuid.UUID
}

type GameRepository interface {
	Create(ctx context.Context, g *model.Game) error
	Update(ctx context.Context, g *model.Game) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Game, error)
	FindBySlug(ctx context.Context, slug string) (*model.Game, error)
	List(ctx context.Context, filter GameFilter, page, limit int) ([]model.Game, int64, error)
	ReplacePlatforms(ctx context.Context, g *model.Game, platforms []model.Platform) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, c *model.Company) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *companyRepository) Update(ctx context.Context, c *model.Company) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Company{}).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	if err := GetDB(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) List(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error) {
	var list []model.Company
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Company{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

type platformRepository struct {
	db *gorm.DB
}

func NewPlatformRepository(db *gorm.DB) PlatformRepository {
	return &platformRepository{db: db}
}

func (r *platformRepository) Create(ctx context.Context, p *model.Platform) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *platformRepository) Update(ctx context.Context, p *model.Platform) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *platformRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Platform{}).Error
}

func (r *platformRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Platform, error) {
	var p model.Platform
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *platformRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Platform, error) {
	list := []model.Platform{}
	if len(ids) == 0 {
		return list, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *platformRepository) List(ctx context.Context) ([]model.Platform, error) {
	var list []model.Platform
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, g *model.Game) error {
	return GetDB(ctx, r.db).Omit("Developer", "Publisher", "Platforms").Create(g).Error
}

func (r *gameRepository) Update(ctx context.Context, g *model.Game) error {
	return GetDB(ctx, r.db).Omit("Developer", "Publisher", "Platforms").Save(g).Error
}

func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Game{}).Error
}

func (r *gameRepository) withRelations(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).Preload("Developer").Preload("Publisher").Preload("Platforms")
}

func (r *gameRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	var g model.Game
	if err := r.withRelations(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) FindBySlug(ctx context.Context, slug string) (*model.Game, error) {
	var g model.Game
	if err := r.withRelations(ctx).First(&g, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) List(ctx context.Context, filter GameFilter, page, limit int) ([]model.Game, int64, error) {
	var list []model.Game
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Game{})
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.PlatformID != nil {
		query = query.Where("id IN (?)", db.Table("game_platforms").
			Select("game_id").Where("platform_id = ?", *filter.PlatformID))
	}
	if filter.CompanyID != nil {
		query = query.Where("developer_id = ? OR publisher_id = ?", *filter.CompanyID, *filter.CompanyID)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Preload("Developer").Preload("Publisher").Preload("Platforms").
		Order("release_date DESC NULLS LAST, title ASC").
		Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *gameRepository) ReplacePlatforms(ctx context.Context, g *model.Game, platforms []model.Platform) error {
	if err := GetDB(ctx, r.db).Model(g).Association("Platforms").Replace(platforms); err != nil {
		return err
	}
	g.Platforms = platforms
	return nil
}

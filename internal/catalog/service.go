package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/models"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/pagination"
	"github.com/Kai120789/marketplace/pkg/slug"
)

// Service manages the catalog dictionaries products point at.
type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context, page int) (pagination.Result[models.Category], error)
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	CreateBrand(ctx context.Context, req CreateBrandRequest) (*models.Brand, error)
	ListBrands(ctx context.Context, page int) (pagination.Result[models.Brand], error)
	GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	CreateColor(ctx context.Context, req CreateColorRequest) (*models.Color, error)
	ListColors(ctx context.Context) ([]models.Color, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}
	if req.Slug == "" {
		req.Slug = slug.Make(req.Name)
	}
	if req.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be derived from name").
			WithDetails(map[string]string{"slug": "required"})
	}

	category := &models.Category{
		Name:          req.Name,
		Slug:          req.Slug,
		Photo:         req.Photo,
		Documentation: req.Documentation,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "ux_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, page int) (pagination.Result[models.Category], error) {
	out, err := s.repo.ListCategories(ctx, pagination.New(page, pagination.CatalogPageSize))
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, categorySlug string) (*models.Category, error) {
	c, err := s.repo.FindCategoryBySlug(ctx, strings.TrimSpace(categorySlug))
	if err != nil {
		return nil, notFoundOr(err, "category")
	}
	return c, nil
}

func (s *service) CreateBrand(ctx context.Context, req CreateBrandRequest) (*models.Brand, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}
	brand := &models.Brand{
		Name:            req.Name,
		Photo:           req.Photo,
		Description:     req.Description,
		OfficialWebsite: req.OfficialWebsite,
		CatalogPDF:      req.CatalogPDF,
	}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create brand")
	}
	return brand, nil
}

func (s *service) ListBrands(ctx context.Context, page int) (pagination.Result[models.Brand], error) {
	out, err := s.repo.ListBrands(ctx, pagination.New(page, pagination.CatalogPageSize))
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list brands")
	}
	return out, nil
}

func (s *service) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	b, err := s.repo.FindBrand(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "brand")
	}
	return b, nil
}

func (s *service) CreateColor(ctx context.Context, req CreateColorRequest) (*models.Color, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}
	color := &models.Color{
		Name:        req.Name,
		Value:       req.Color,
		Image:       req.Image,
		PaletteFile: req.PaletteFile,
	}
	if err := s.repo.CreateColor(ctx, color); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create color")
	}
	return color, nil
}

func (s *service) ListColors(ctx context.Context) ([]models.Color, error) {
	rows, err := s.repo.ListColors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list colors")
	}
	return rows, nil
}

func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+entity)
}

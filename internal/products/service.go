package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/models"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/metrics"
	"github.com/Kai120789/marketplace/pkg/outbox"
	"github.com/Kai120789/marketplace/pkg/pagination"
	redisclient "github.com/Kai120789/marketplace/pkg/redis"
	"github.com/Kai120789/marketplace/pkg/slug"
)

const (
	indexProductCount = 4
	indexBrandCount   = 6
	defaultIndexTTL   = 60 * time.Second
)

// Service exposes the storefront product catalog.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProductDetail(ctx context.Context, productSlug, variantSlug string) (*ProductDetail, error)
	ListProducts(ctx context.Context, input ListProductsInput) (pagination.Result[ProductDTO], error)
	Index(ctx context.Context) (*IndexPage, error)

	CreateVariant(ctx context.Context, productID uuid.UUID, req CreateVariantRequest) (*VariantDTO, error)
	DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error

	AttachColor(ctx context.Context, productID, colorID uuid.UUID) error
	DetachColor(ctx context.Context, productID, colorID uuid.UUID) error
}

type brandLister interface {
	LatestBrands(ctx context.Context, limit int) ([]models.Brand, error)
}

// ServiceParams bundles the product service dependencies. Cache and Metrics
// are optional.
type ServiceParams struct {
	DB          *db.Client
	Outbox      outbox.Emitter
	Brands      brandLister
	Cache       redisclient.JSONCache
	CacheTTL    time.Duration
	MaxAttempts int
	Metrics     *metrics.CommerceMetrics
	Logger      *logger.Logger
}

type service struct {
	db          *db.Client
	outbox      outbox.Emitter
	brands      brandLister
	cache       redisclient.JSONCache
	cacheTTL    time.Duration
	maxAttempts int
	metrics     *metrics.CommerceMetrics
	logg        *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Brands == nil {
		return nil, fmt.Errorf("brand lister required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = defaultIndexTTL
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:          params.DB,
		outbox:      params.Outbox,
		brands:      params.Brands,
		cache:       params.Cache,
		cacheTTL:    ttl,
		maxAttempts: params.MaxAttempts,
		metrics:     params.Metrics,
		logg:        logg,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}
	if req.Slug == "" {
		req.Slug = slug.Make(req.Name)
	}
	if req.Slug == "" {
		req.Slug = "product-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}

	product := &models.Product{
		Name:         req.Name,
		Slug:         req.Slug,
		CategoryID:   req.CategoryID,
		BrandID:      req.BrandID,
		Description:  req.Description,
		DefaultPrice: req.DefaultPrice.Round(2),
		Manual:       req.Manual,
		VideoURL:     req.VideoURL,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindCategory(ctx, req.CategoryID); err != nil {
			return notFoundOr(err, "category")
		}
		if _, err := repo.FindBrand(ctx, req.BrandID); err != nil {
			return notFoundOr(err, "brand")
		}
		if err := repo.CreateProduct(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "ux_products_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ProductFromModel(product)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	found, err := NewRepository(s.db.DB()).DeleteProduct(ctx, productID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is still referenced")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// GetProductDetail resolves the product page. With an empty variantSlug the
// default variant is shown, falling back to the lowest seq when unset.
func (s *service) GetProductDetail(ctx context.Context, productSlug, variantSlug string) (*ProductDetail, error) {
	repo := NewRepository(s.db.DB())

	product, err := repo.FindBySlug(ctx, strings.TrimSpace(productSlug))
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	variants, err := repo.ListVariants(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list variants")
	}

	selected := -1
	switch {
	case variantSlug != "":
		for i := range variants {
			if variants[i].Slug == variantSlug {
				selected = i
				break
			}
		}
		if selected < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
	case product.DefaultVariantID != nil:
		for i := range variants {
			if variants[i].ID == *product.DefaultVariantID {
				selected = i
				break
			}
		}
	}
	if selected < 0 && len(variants) > 0 {
		selected = 0
	}

	category, err := repo.FindCategory(ctx, product.CategoryID)
	if err != nil {
		return nil, notFoundOr(err, "category")
	}
	brand, err := repo.FindBrand(ctx, product.BrandID)
	if err != nil {
		return nil, notFoundOr(err, "brand")
	}
	colors, err := repo.ListColors(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list colors")
	}

	detail := &ProductDetail{
		Product:  ProductFromModel(product),
		Category: *category,
		Brand:    *brand,
		Siblings: make([]VariantDTO, 0, len(variants)),
		Colors:   colors,
	}
	for i := range variants {
		dto := VariantFromModel(&variants[i])
		if i == selected {
			detail.Variant = &dto
			continue
		}
		detail.Siblings = append(detail.Siblings, dto)
	}
	return detail, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (pagination.Result[ProductDTO], error) {
	input.Filters.Query = strings.TrimSpace(input.Filters.Query)
	input.Filters.CategorySlug = strings.TrimSpace(input.Filters.CategorySlug)
	if f := input.Filters; f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return pagination.Result[ProductDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}

	page := pagination.New(input.Page, pagination.ProductPageSize)
	rows, err := NewRepository(s.db.DB()).ListProducts(ctx, input, page)
	if err != nil {
		return pagination.Result[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return pagination.NewResult(productsFromModels(rows.Items), rows.Total, page), nil
}

// Index returns the landing page payload, served from the cache when warm.
func (s *service) Index(ctx context.Context) (*IndexPage, error) {
	var key string
	if s.cache != nil {
		key = s.cache.CacheKey("index")
		var cached IndexPage
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redisclient.ErrCacheMiss) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "index cache read failed")
		}
	}

	latest, err := NewRepository(s.db.DB()).LatestProducts(ctx, indexProductCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest products")
	}
	brands, err := s.brands.LatestBrands(ctx, indexBrandCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brands")
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	page := &IndexPage{Products: productsFromModels(latest), Brands: brands}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, page, s.cacheTTL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "index cache write failed")
		}
	}
	return page, nil
}

func (s *service) AttachColor(ctx context.Context, productID, colorID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindByID(ctx, productID); err != nil {
			return notFoundOr(err, "product")
		}
		if _, err := repo.FindColor(ctx, colorID); err != nil {
			return notFoundOr(err, "color")
		}
		if err := repo.AttachColor(ctx, productID, colorID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach color")
		}
		return nil
	})
}

func (s *service) DetachColor(ctx context.Context, productID, colorID uuid.UUID) error {
	found, err := NewRepository(s.db.DB()).DetachColor(ctx, productID, colorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detach color")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product color not found")
	}
	return nil
}

func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+entity)
}

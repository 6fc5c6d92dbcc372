package product

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/slug"
)

var positivePrice = validation.By(func(value any) error {
	var price decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		price = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		price = *v
	}
	if !price.IsPositive() {
		return validation.NewError("validation_price", "must be greater than zero")
	}
	if !price.Equal(price.Round(2)) {
		return validation.NewError("validation_price", "must have at most two decimal places")
	}
	if price.GreaterThanOrEqual(decimal.New(1, 8)) {
		return validation.NewError("validation_price", "is too large")
	}
	return nil
})

// requiredID rejects uuid.Nil; validation.Required sees a UUID as a non-empty array.
var requiredID = validation.By(func(value any) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return validation.ErrRequired
	}
	return nil
})

var slugRule = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" || slug.Valid(s) {
		return nil
	}
	return validation.NewError("validation_slug", "must contain lowercase letters, digits and single hyphens")
})

// CreateProductRequest is the payload sellers send to list a product.
type CreateProductRequest struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug,omitempty"`
	CategoryID   uuid.UUID       `json:"category_id"`
	BrandID      uuid.UUID       `json:"brand_id"`
	Description  string          `json:"description"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	Manual       *string         `json:"manual,omitempty"`
	VideoURL     *string         `json:"video_url,omitempty"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(3, 200)),
		validation.Field(&r.Slug, slugRule, validation.Length(0, 220)),
		validation.Field(&r.CategoryID, requiredID),
		validation.Field(&r.BrandID, requiredID),
		validation.Field(&r.DefaultPrice, positivePrice),
		validation.Field(&r.Manual, is.URL),
		validation.Field(&r.VideoURL, is.URL),
	)
}

// CreateVariantRequest describes one purchasable configuration of a product.
type CreateVariantRequest struct {
	Name             string           `json:"name"`
	ColorID          *uuid.UUID       `json:"color_id,omitempty"`
	Description      string           `json:"description"`
	Images           []string         `json:"images"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	TechnicalDrawing *string          `json:"technical_drawing,omitempty"`
	ProductURL       *string          `json:"product_url,omitempty"`
}

func (r CreateVariantRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.Images, validation.Length(0, 20), validation.Each(is.URL)),
		validation.Field(&r.Price, validation.When(r.Price != nil, positivePrice)),
		validation.Field(&r.TechnicalDrawing, is.URL),
		validation.Field(&r.ProductURL, is.URL),
	)
}

type ProductDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	CategoryID       uuid.UUID       `json:"category_id"`
	BrandID          uuid.UUID       `json:"brand_id"`
	Description      string          `json:"description"`
	DefaultPrice     decimal.Decimal `json:"default_price"`
	AvgRating        decimal.Decimal `json:"avg_rating"`
	Manual           *string         `json:"manual,omitempty"`
	VideoURL         *string         `json:"video_url,omitempty"`
	DefaultVariantID *uuid.UUID      `json:"default_variant_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type VariantDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	ProductID        uuid.UUID       `json:"product_id"`
	ColorID          *uuid.UUID      `json:"color_id,omitempty"`
	Description      string          `json:"description"`
	Images           []string        `json:"images"`
	Price            decimal.Decimal `json:"price"`
	TechnicalDrawing *string         `json:"technical_drawing,omitempty"`
	ProductURL       *string         `json:"product_url,omitempty"`
	Seq              int             `json:"seq"`
}

// ProductDetail is the product page: the selected variant plus its siblings.
type ProductDetail struct {
	Product  ProductDTO      `json:"product"`
	Category models.Category `json:"category"`
	Brand    models.Brand    `json:"brand"`
	Variant  *VariantDTO     `json:"variant"`
	Siblings []VariantDTO    `json:"siblings"`
	Colors   []models.Color  `json:"colors"`
}

// IndexPage is the cached landing page payload.
type IndexPage struct {
	Products []ProductDTO   `json:"products"`
	Brands   []models.Brand `json:"brands"`
}

func ProductFromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		CategoryID:       p.CategoryID,
		BrandID:          p.BrandID,
		Description:      p.Description,
		DefaultPrice:     p.DefaultPrice,
		AvgRating:        p.AvgRating,
		Manual:           p.Manual,
		VideoURL:         p.VideoURL,
		DefaultVariantID: p.DefaultVariantID,
		CreatedAt:        p.CreatedAt,
	}
}

func VariantFromModel(v *models.ProductVariant) VariantDTO {
	images := []string(v.Images)
	if images == nil {
		images = []string{}
	}
	return VariantDTO{
		ID:               v.ID,
		Name:             v.Name,
		Slug:             v.Slug,
		ProductID:        v.ProductID,
		ColorID:          v.ColorID,
		Description:      v.Description,
		Images:           images,
		Price:            v.Price,
		TechnicalDrawing: v.TechnicalDrawing,
		ProductURL:       v.ProductURL,
		Seq:              v.Seq,
	}
}

func productsFromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ProductFromModel(&rows[i]))
	}
	return out
}

package catalog

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Kai120789/marketplace/pkg/slug"
)

var colorValue = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)

var slugRule = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" || slug.Valid(s) {
		return nil
	}
	return validation.NewError("validation_slug", "must contain lowercase letters, digits and single hyphens")
})

type CreateCategoryRequest struct {
	Name          string  `json:"name"`
	Slug          string  `json:"slug,omitempty"`
	Photo         *string `json:"photo,omitempty"`
	Documentation *string `json:"documentation,omitempty"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Slug, slugRule, validation.Length(0, 140)),
		validation.Field(&r.Photo, is.URL),
		validation.Field(&r.Documentation, is.URL),
	)
}

type CreateBrandRequest struct {
	Name            string  `json:"name"`
	Photo           *string `json:"photo,omitempty"`
	Description     *string `json:"description,omitempty"`
	OfficialWebsite *string `json:"official_website,omitempty"`
	CatalogPDF      *string `json:"catalog_pdf,omitempty"`
}

func (r CreateBrandRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.Photo, is.URL),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.OfficialWebsite, is.URL),
		validation.Field(&r.CatalogPDF, is.URL),
	)
}

type CreateColorRequest struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Image       *string `json:"image,omitempty"`
	PaletteFile *string `json:"palette_file,omitempty"`
}

func (r CreateColorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 60)),
		validation.Field(&r.Color,
			validation.Required,
			validation.Match(colorValue).Error("must be a hex code or a color name"),
		),
		validation.Field(&r.Image, is.URL),
		validation.Field(&r.PaletteFile, is.URL),
	)
}

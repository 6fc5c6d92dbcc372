package address

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db/models"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type CreateRequest struct {
	Country     string  `json:"country"`
	City        string  `json:"city"`
	Street      string  `json:"street"`
	PostalIndex string  `json:"postal_index"`
	MapLink     *string `json:"map_link,omitempty"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Country, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Street, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.PostalIndex, validation.Required, validation.Length(2, 20)),
		validation.Field(&r.MapLink, is.URL),
	)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.Address, error) {
	req.Country = strings.TrimSpace(req.Country)
	req.City = strings.TrimSpace(req.City)
	req.Street = strings.TrimSpace(req.Street)
	req.PostalIndex = strings.TrimSpace(req.PostalIndex)
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}

	addr := &models.Address{
		UserID:      userID,
		Country:     req.Country,
		City:        req.City,
		Street:      req.Street,
		PostalIndex: req.PostalIndex,
		MapLink:     req.MapLink,
	}
	if err := s.repo.Create(ctx, addr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return addr, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.DeleteOwned(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

// IsNotFound reports whether err is the repository's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

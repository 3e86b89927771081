package gateway

import (
	"context"

	"github.com/vbonduro/aliados/internal/domain"
)

// Gateway is the remote catalog service. Identifiers are assigned by the
// gateway; every mutating call returns the full stored record.
//
// Implementations report failures with domain.ErrNotFound, domain.ErrNetwork or
// a *domain.ValidationError so callers can tell them apart with errors.Is/As.
type Gateway interface {
	ListPartners(ctx context.Context) ([]domain.Partner, error)
	CreatePartner(ctx context.Context, in domain.PartnerInput) (*domain.Partner, error)
	UpdatePartner(ctx context.Context, id int64, in domain.PartnerInput) (*domain.Partner, error)
	DeletePartner(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

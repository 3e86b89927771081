// Package local implements gateway.Gateway on top of the SQLite stores so the
// admin can run without a remote catalog service.
package local

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/aliados/internal/domain"
)

// partnerRepository is the subset of store.PartnerStore that Gateway requires.
type partnerRepository interface {
	Create(ctx context.Context, name, image string) (*domain.Partner, error)
	GetByID(ctx context.Context, id int64) (*domain.Partner, error)
	List(ctx context.Context) ([]*domain.Partner, error)
	Update(ctx context.Context, id int64, name, image string) error
	Delete(ctx context.Context, id int64) error
}

// categoryRepository is the subset of store.CategoryStore that Gateway requires.
type categoryRepository interface {
	Create(ctx context.Context, partnerID int64, name string) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	ListByPartnerID(ctx context.Context, partnerID int64) ([]*domain.Category, error)
	Update(ctx context.Context, id, partnerID int64, name string) error
	Delete(ctx context.Context, id int64) error
}

// productRepository is the subset of store.ProductStore that Gateway requires.
type productRepository interface {
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	ListByPartnerID(ctx context.Context, partnerID int64) ([]*domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) error
	Delete(ctx context.Context, id int64) error
}

type Gateway struct {
	partners   partnerRepository
	categories categoryRepository
	products   productRepository
	logger     *slog.Logger
}

func NewGateway(partners partnerRepository, categories categoryRepository, products productRepository, logger *slog.Logger) *Gateway {
	return &Gateway{
		partners:   partners,
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// ListPartners returns every partner with its categories and products nested,
// each product carrying a copy of its category.
func (g *Gateway) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	partners, err := g.partners.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Partner, 0, len(partners))
	for _, p := range partners {
		categories, err := g.categories.ListByPartnerID(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories for partner %d: %w", p.ID, err)
		}
		products, err := g.products.ListByPartnerID(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list products for partner %d: %w", p.ID, err)
		}

		byID := make(map[int64]domain.Category, len(categories))
		nested := *p
		nested.Categories = make([]domain.Category, 0, len(categories))
		for _, c := range categories {
			byID[c.ID] = *c
			nested.Categories = append(nested.Categories, *c)
		}
		nested.Products = make([]domain.Product, 0, len(products))
		for _, pr := range products {
			if c, ok := byID[pr.CategoryID]; ok {
				pr.Category = c.Ref()
			}
			nested.Products = append(nested.Products, *pr)
		}
		out = append(out, nested)
	}

	g.logger.Debug("listed partners", "partners", len(out))
	return out, nil
}

func (g *Gateway) CreatePartner(ctx context.Context, in domain.PartnerInput) (*domain.Partner, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return g.partners.Create(ctx, in.Name, in.Image)
}

func (g *Gateway) UpdatePartner(ctx context.Context, id int64, in domain.PartnerInput) (*domain.Partner, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if err := g.partners.Update(ctx, id, in.Name, in.Image); err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}
	return g.partners.GetByID(ctx, id)
}

func (g *Gateway) DeletePartner(ctx context.Context, id int64) error {
	return g.partners.Delete(ctx, id)
}

func (g *Gateway) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := g.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, *c)
	}
	return out, nil
}

func (g *Gateway) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := g.checkCategory(ctx, in); err != nil {
		return nil, err
	}
	return g.categories.Create(ctx, in.PartnerID, in.Name)
}

func (g *Gateway) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	if err := g.checkCategory(ctx, in); err != nil {
		return nil, err
	}
	if err := g.categories.Update(ctx, id, in.PartnerID, in.Name); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	c, err := g.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (g *Gateway) DeleteCategory(ctx context.Context, id int64) error {
	return g.categories.Delete(ctx, id)
}

func (g *Gateway) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	c, err := g.checkProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := g.products.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	p.Category = c.Ref()
	return p, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	c, err := g.checkProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := g.products.Update(ctx, id, in); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	p, err := g.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	p.Category = c.Ref()
	return p, nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id int64) error {
	return g.products.Delete(ctx, id)
}

func (g *Gateway) checkCategory(ctx context.Context, in domain.CategoryInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	p, err := g.partners.GetByID(ctx, in.PartnerID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NewValidationError("partnerId", "unknown partner")
	}
	return nil
}

func (g *Gateway) checkProduct(ctx context.Context, in domain.ProductInput) (*domain.Category, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	c, err := g.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewValidationError("categoryId", "unknown category")
	}
	if c.PartnerID != in.PartnerID {
		return nil, domain.NewValidationError("categoryId", "category belongs to another partner")
	}
	return c, nil
}

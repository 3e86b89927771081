package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/aliados/internal/domain"
	"github.com/vbonduro/aliados/internal/gateway"
)

// Reconciler issues catalog mutations to the gateway and folds each successful
// response into the Store, so callers never need a full reload. A failed call
// leaves the Store untouched.
//
// Overlapping mutations of the same id are applied in completion order; the
// response that arrives last wins.
type Reconciler struct {
	gateway gateway.Gateway
	store   *Store
	logger  *slog.Logger
}

func NewReconciler(gw gateway.Gateway, store *Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{gateway: gw, store: store, logger: logger}
}

func (r *Reconciler) CreatePartner(ctx context.Context, in domain.PartnerInput) (*domain.Partner, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	p, err := r.gateway.CreatePartner(ctx, in)
	if err != nil {
		r.logger.Error("create partner failed", "name", in.Name, "error", err)
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}

	r.store.apply(func(st *state) {
		st.putPartner(*p)
		for _, c := range p.Categories {
			c.PartnerID = p.ID
			st.putCategory(c)
		}
		for _, pr := range p.Products {
			pr.PartnerID = p.ID
			st.putProduct(pr)
		}
	})
	r.logger.Info("partner created", "partner_id", p.ID)
	return p, nil
}

func (r *Reconciler) UpdatePartner(ctx context.Context, id int64, in domain.PartnerInput) (*domain.Partner, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	p, err := r.gateway.UpdatePartner(ctx, id, in)
	if err != nil {
		r.logger.Error("update partner failed", "partner_id", id, "error", err)
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}

	r.store.apply(func(st *state) {
		if _, ok := st.partners[p.ID]; !ok {
			r.logger.Warn("discarding update for partner no longer cached", "partner_id", p.ID)
			return
		}
		st.putPartner(*p)
	})
	r.logger.Info("partner updated", "partner_id", p.ID)
	return p, nil
}

// DeletePartner removes the partner and everything it owns. Deleting the
// selected partner deselects it. Deleting an id that is already gone, locally
// or at the gateway, succeeds.
func (r *Reconciler) DeletePartner(ctx context.Context, id int64) error {
	if err := r.deleteRemote(ctx, "partner", id, r.gateway.DeletePartner); err != nil {
		return err
	}
	r.store.apply(func(st *state) { st.removePartner(id) })
	r.logger.Info("partner deleted", "partner_id", id)
	return nil
}

// RefreshCategories reloads the flat category list and replaces the categories
// of every cached partner with it.
func (r *Reconciler) RefreshCategories(ctx context.Context) error {
	categories, err := r.gateway.ListCategories(ctx)
	if err != nil {
		r.logger.Error("list categories failed", "error", err)
		return fmt.Errorf("failed to list categories: %w", err)
	}
	r.store.apply(func(st *state) { st.replaceCategories(categories) })
	return nil
}

func (r *Reconciler) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := r.validateCategory(in); err != nil {
		return nil, err
	}

	c, err := r.gateway.CreateCategory(ctx, in)
	if err != nil {
		r.logger.Error("create category failed", "partner_id", in.PartnerID, "name", in.Name, "error", err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	r.store.apply(func(st *state) {
		if !st.putCategory(*c) {
			r.logger.Warn("discarding category for partner no longer cached", "category_id", c.ID, "partner_id", c.PartnerID)
		}
	})
	r.logger.Info("category created", "category_id", c.ID, "partner_id", c.PartnerID)
	return c, nil
}

// UpdateCategory replaces the category in place and rewrites every product
// that embeds it. Moving a category to another partner moves its products too.
func (r *Reconciler) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	if err := r.validateCategory(in); err != nil {
		return nil, err
	}

	c, err := r.gateway.UpdateCategory(ctx, id, in)
	if err == nil && c == nil {
		err = fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("update category failed", "category_id", id, "error", err)
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	r.store.apply(func(st *state) {
		if !st.putCategory(*c) {
			r.logger.Warn("discarding category for partner no longer cached", "category_id", c.ID, "partner_id", c.PartnerID)
		}
	})
	r.logger.Info("category updated", "category_id", c.ID)
	return c, nil
}

// DeleteCategory removes the category. An active filter on it is cleared;
// products that referenced it are kept.
func (r *Reconciler) DeleteCategory(ctx context.Context, id int64) error {
	if err := r.deleteRemote(ctx, "category", id, r.gateway.DeleteCategory); err != nil {
		return err
	}
	r.store.apply(func(st *state) { st.removeCategory(id) })
	r.logger.Info("category deleted", "category_id", id)
	return nil
}

func (r *Reconciler) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := r.validateProduct(in); err != nil {
		return nil, err
	}

	p, err := r.gateway.CreateProduct(ctx, in)
	if err != nil {
		r.logger.Error("create product failed", "partner_id", in.PartnerID, "category_id", in.CategoryID, "error", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	r.store.apply(func(st *state) {
		if !st.putProduct(*p) {
			r.logger.Warn("discarding product for partner no longer cached", "product_id", p.ID, "partner_id", p.PartnerID)
		}
	})
	r.logger.Info("product created", "product_id", p.ID, "images", len(p.Images))
	return p, nil
}

// UpdateProduct replaces the product at its current index, including when its
// category changes.
func (r *Reconciler) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := r.validateProduct(in); err != nil {
		return nil, err
	}

	p, err := r.gateway.UpdateProduct(ctx, id, in)
	if err != nil {
		r.logger.Error("update product failed", "product_id", id, "error", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	r.store.apply(func(st *state) {
		if !st.putProduct(*p) {
			r.logger.Warn("discarding product for partner no longer cached", "product_id", p.ID, "partner_id", p.PartnerID)
		}
	})
	r.logger.Info("product updated", "product_id", p.ID)
	return p, nil
}

func (r *Reconciler) DeleteProduct(ctx context.Context, id int64) error {
	if err := r.deleteRemote(ctx, "product", id, r.gateway.DeleteProduct); err != nil {
		return err
	}
	r.store.apply(func(st *state) { st.removeProduct(id) })
	r.logger.Info("product deleted", "product_id", id)
	return nil
}

// deleteRemote treats a not-found answer as an earlier delete having won.
func (r *Reconciler) deleteRemote(ctx context.Context, kind string, id int64, del func(context.Context, int64) error) error {
	err := del(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Warn("delete target already gone", "kind", kind, "id", id)
		return nil
	}
	r.logger.Error("delete failed", "kind", kind, "id", id, "error", err)
	return fmt.Errorf("failed to delete %s: %w", kind, err)
}

func (r *Reconciler) validateCategory(in domain.CategoryInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	if _, ok := r.store.Partner(in.PartnerID); !ok {
		return domain.NewValidationError("partnerId", "unknown partner")
	}
	return nil
}

// validateProduct also enforces that the category belongs to the partner.
func (r *Reconciler) validateProduct(in domain.ProductInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	c, ok := r.store.Category(in.CategoryID)
	if !ok {
		return domain.NewValidationError("categoryId", "unknown category")
	}
	if c.PartnerID != in.PartnerID {
		return domain.NewValidationError("categoryId", "category belongs to another partner")
	}
	return nil
}

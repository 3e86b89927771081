package local

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/vbonduro/aliados/internal/catalog"
	"github.com/vbonduro/aliados/internal/db"
	"github.com/vbonduro/aliados/internal/domain"
	"github.com/vbonduro/aliados/internal/store"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	return NewGateway(store.NewPartnerStore(d), store.NewCategoryStore(d), store.NewProductStore(d), slog.Default())
}

func TestGatewayListPartnersNestsEntities(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	p, err := gw.CreatePartner(ctx, domain.PartnerInput{Name: "Cafe Norte", Image: "img"})
	require.NoError(t, err)
	c, err := gw.CreateCategory(ctx, domain.CategoryInput{Name: "Bebidas", PartnerID: p.ID})
	require.NoError(t, err)
	pr, err := gw.CreateProduct(ctx, domain.ProductInput{
		Title: "Cafe", Description: "Negro", Price: decimal.NewFromInt(2),
		Images: []string{"a", "b"}, CategoryID: c.ID, PartnerID: p.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, pr.Category)
	assert.Equal(t, "Bebidas", pr.Category.Name)

	partners, err := gw.ListPartners(ctx)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, []domain.Category{*c}, partners[0].Categories)
	require.Len(t, partners[0].Products, 1)
	assert.Equal(t, []string{"a", "b"}, partners[0].Products[0].Images)
	assert.Equal(t, c.ID, partners[0].Products[0].Category.ID)
}

func TestGatewayRejectsInconsistentInput(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	_, err := gw.CreateCategory(ctx, domain.CategoryInput{Name: "Huerfana", PartnerID: 42})
	assert.True(t, domain.IsValidation(err))

	p1, err := gw.CreatePartner(ctx, domain.PartnerInput{Name: "Uno", Image: "img"})
	require.NoError(t, err)
	p2, err := gw.CreatePartner(ctx, domain.PartnerInput{Name: "Dos", Image: "img"})
	require.NoError(t, err)
	c, err := gw.CreateCategory(ctx, domain.CategoryInput{Name: "Panes", PartnerID: p2.ID})
	require.NoError(t, err)

	_, err = gw.CreateProduct(ctx, domain.ProductInput{
		Title: "Pan", Description: "Blanco", Price: decimal.NewFromInt(1), CategoryID: c.ID, PartnerID: p1.ID,
	})
	assert.True(t, domain.IsValidation(err))
}

func TestGatewayNotFound(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	assert.ErrorIs(t, gw.DeletePartner(ctx, 7), domain.ErrNotFound)
	assert.ErrorIs(t, gw.DeleteCategory(ctx, 7), domain.ErrNotFound)
	assert.ErrorIs(t, gw.DeleteProduct(ctx, 7), domain.ErrNotFound)

	_, err := gw.UpdatePartner(ctx, 7, domain.PartnerInput{Name: "x", Image: "y"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestCatalogOverLocalGateway runs the reconciler against a real database and
// checks that a reload agrees with the incrementally reconciled state.
func TestCatalogOverLocalGateway(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()
	cat := catalog.NewStore(gw, language.Spanish, slog.Default())
	rec := catalog.NewReconciler(gw, cat, slog.Default())
	require.NoError(t, cat.LoadPartners(ctx))

	p, err := rec.CreatePartner(ctx, domain.PartnerInput{Name: "Cafe Norte", Image: "img"})
	require.NoError(t, err)
	c1, err := rec.CreateCategory(ctx, domain.CategoryInput{Name: "Bebidas", PartnerID: p.ID})
	require.NoError(t, err)
	c2, err := rec.CreateCategory(ctx, domain.CategoryInput{Name: "Postres", PartnerID: p.ID})
	require.NoError(t, err)

	input := func(title string, categoryID int64) domain.ProductInput {
		return domain.ProductInput{
			Title: title, Description: title, Price: decimal.NewFromInt(3),
			Images: []string{"img"}, CategoryID: categoryID, PartnerID: p.ID,
		}
	}
	pr1, err := rec.CreateProduct(ctx, input("Cafe", c1.ID))
	require.NoError(t, err)
	_, err = rec.CreateProduct(ctx, input("Flan", c2.ID))
	require.NoError(t, err)
	_, err = rec.UpdateProduct(ctx, pr1.ID, input("Cafe doble", c2.ID))
	require.NoError(t, err)
	require.NoError(t, rec.DeleteCategory(ctx, c1.ID))
	require.NoError(t, rec.DeleteCategory(ctx, c1.ID))

	cat.SelectPartner(p.ID)
	incremental := cat.Snapshot()

	require.NoError(t, cat.LoadPartners(ctx))
	assert.Equal(t, incremental, cat.Snapshot())
}

package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vbonduro/aliados/internal/domain"
)

// FilterProducts returns the products whose CategoryID equals *categoryID, in
// their original order. A nil categoryID returns every product.
func FilterProducts(products []domain.Product, categoryID *int64) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if categoryID == nil || p.CategoryID == *categoryID {
			out = append(out, p)
		}
	}
	return out
}

// SortCategories returns a copy of categories ordered for display: by partner
// id, then by name using the collation rules of tag. Case is significant.
func SortCategories(categories []domain.Category, tag language.Tag) []domain.Category {
	out := slices.Clone(categories)
	coll := collate.New(tag)
	slices.SortStableFunc(out, func(a, b domain.Category) int {
		if c := cmp.Compare(a.PartnerID, b.PartnerID); c != 0 {
			return c
		}
		return coll.CompareString(a.Name, b.Name)
	})
	return out
}

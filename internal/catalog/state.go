package catalog

import (
	"slices"

	"github.com/vbonduro/aliados/internal/domain"
)

// partnerRecord is a partner with its owned entities reduced to ordered id lists.
type partnerRecord struct {
	partner     domain.Partner // Categories and Products are always nil here
	categoryIDs []int64
	productIDs  []int64
}

// state is the normalized catalog: three id-keyed maps plus per-partner index
// lists. It is only touched while Store.mu is held.
type state struct {
	partnerOrder []int64
	partners     map[int64]*partnerRecord
	categories   map[int64]domain.Category
	products     map[int64]domain.Product

	selected *int64
	filter   *int64
}

func newState() state {
	return state{
		partners:   map[int64]*partnerRecord{},
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
	}
}

// ingest flattens the nested gateway payload. A repeated id keeps the position
// of its first occurrence and the value of its last.
func ingest(partners []domain.Partner) state {
	st := newState()
	for _, p := range partners {
		st.putPartner(p)
		for _, c := range p.Categories {
			c.PartnerID = p.ID
			st.ingestCategory(c)
		}
		for _, pr := range p.Products {
			pr.PartnerID = p.ID
			st.ingestProduct(pr)
		}
	}
	st.refreshCategoryRefs()
	return st
}

// foreignProducts lists products whose category is cached under a different
// partner than the product's own, in partner order.
func (st *state) foreignProducts() []domain.Product {
	var out []domain.Product
	for _, partnerID := range st.partnerOrder {
		for _, pid := range st.partners[partnerID].productIDs {
			pr := st.products[pid]
			if c, ok := st.categories[pr.CategoryID]; ok && c.PartnerID != pr.PartnerID {
				out = append(out, pr)
			}
		}
	}
	return out
}

func (st *state) ingestCategory(c domain.Category) {
	if prev, ok := st.categories[c.ID]; ok {
		c.PartnerID = prev.PartnerID
		st.categories[c.ID] = c
		return
	}
	st.categories[c.ID] = c
	rec := st.partners[c.PartnerID]
	rec.categoryIDs = append(rec.categoryIDs, c.ID)
}

func (st *state) ingestProduct(p domain.Product) {
	p = p.Clone()
	if prev, ok := st.products[p.ID]; ok {
		p.PartnerID = prev.PartnerID
		st.products[p.ID] = p
		return
	}
	st.products[p.ID] = p
	rec := st.partners[p.PartnerID]
	rec.productIDs = append(rec.productIDs, p.ID)
}

// putPartner replaces the partner's own fields in place or appends a new record.
// Owned categories and products are left alone.
func (st *state) putPartner(p domain.Partner) {
	p.Categories = nil
	p.Products = nil
	if rec, ok := st.partners[p.ID]; ok {
		rec.partner = p
		return
	}
	st.partners[p.ID] = &partnerRecord{partner: p}
	st.partnerOrder = append(st.partnerOrder, p.ID)
}

// removePartner drops a partner and everything it owns. Absent ids are a no-op.
func (st *state) removePartner(id int64) {
	rec, ok := st.partners[id]
	if !ok {
		return
	}
	for _, cid := range rec.categoryIDs {
		delete(st.categories, cid)
	}
	for _, pid := range rec.productIDs {
		delete(st.products, pid)
	}
	delete(st.partners, id)
	st.partnerOrder = removeID(st.partnerOrder, id)
	if st.selected != nil && *st.selected == id {
		st.selected = nil
		st.filter = nil
	}
}

// putCategory inserts or replaces c. A category whose partner changed moves to
// the end of the new partner's list and takes its products along so product
// and category partners stay equal. Product copies of the category are
// rewritten. It reports false when c.PartnerID is not a known partner.
func (st *state) putCategory(c domain.Category) bool {
	target, ok := st.partners[c.PartnerID]
	if !ok {
		return false
	}

	prev, existed := st.categories[c.ID]
	st.categories[c.ID] = c

	switch {
	case !existed:
		target.categoryIDs = append(target.categoryIDs, c.ID)
	case prev.PartnerID != c.PartnerID:
		if from, ok := st.partners[prev.PartnerID]; ok {
			from.categoryIDs = removeID(from.categoryIDs, c.ID)
		}
		st.moveCategoryProducts(c.ID, prev.PartnerID, c.PartnerID)
		target.categoryIDs = append(target.categoryIDs, c.ID)
	}

	st.refreshCategoryRefs()
	st.normalizeFilter()
	return true
}

// moveCategoryProducts reassigns the products of categoryID owned by fromID to
// toID, appending them to toID's list in their previous order.
func (st *state) moveCategoryProducts(categoryID, fromID, toID int64) {
	from, ok := st.partners[fromID]
	if !ok {
		return
	}
	to, ok := st.partners[toID]
	if !ok {
		return
	}
	var moved []int64
	for _, pid := range from.productIDs {
		if st.products[pid].CategoryID == categoryID {
			moved = append(moved, pid)
		}
	}
	for _, pid := range moved {
		from.productIDs = removeID(from.productIDs, pid)
		pr := st.products[pid]
		pr.PartnerID = toID
		st.products[pid] = pr
	}
	to.productIDs = append(to.productIDs, moved...)
}

// refreshCategoryRefs rewrites every product's embedded category from the
// cached categories. Products of an unknown category carry none.
func (st *state) refreshCategoryRefs() {
	for id, pr := range st.products {
		if c, ok := st.categories[pr.CategoryID]; ok {
			pr.Category = c.Ref()
		} else {
			pr.Category = nil
		}
		st.products[id] = pr
	}
}

// removeCategory drops the category. Its products keep their CategoryID but
// lose the embedded category.
func (st *state) removeCategory(id int64) {
	c, ok := st.categories[id]
	if !ok {
		return
	}
	delete(st.categories, id)
	if rec, ok := st.partners[c.PartnerID]; ok {
		rec.categoryIDs = removeID(rec.categoryIDs, id)
	}
	for pid, pr := range st.products {
		if pr.CategoryID == id {
			pr.Category = nil
			st.products[pid] = pr
		}
	}
	st.normalizeFilter()
}

// replaceCategories swaps every known partner's category list for the given
// one. Categories of unknown partners are ignored. A category that now belongs
// to another partner takes its products along, as in putCategory.
func (st *state) replaceCategories(categories []domain.Category) {
	previous := st.categories
	st.categories = map[int64]domain.Category{}
	for _, rec := range st.partners {
		rec.categoryIDs = nil
	}

	for _, c := range categories {
		rec, ok := st.partners[c.PartnerID]
		if !ok {
			continue
		}
		if prev, dup := st.categories[c.ID]; dup {
			if prev.PartnerID != c.PartnerID {
				continue
			}
		} else {
			rec.categoryIDs = append(rec.categoryIDs, c.ID)
		}
		st.categories[c.ID] = c
	}

	for _, c := range categories {
		cur, ok := st.categories[c.ID]
		if !ok || cur.PartnerID != c.PartnerID {
			continue
		}
		if old, ok := previous[c.ID]; ok && old.PartnerID != c.PartnerID {
			st.moveCategoryProducts(c.ID, old.PartnerID, c.PartnerID)
		}
	}

	st.refreshCategoryRefs()
	st.normalizeFilter()
}

// putProduct inserts or replaces p, keeping its index unless it changed
// partner. It reports false when p.PartnerID is not a known partner.
func (st *state) putProduct(p domain.Product) bool {
	target, ok := st.partners[p.PartnerID]
	if !ok {
		return false
	}
	p = p.Clone()
	if c, ok := st.categories[p.CategoryID]; ok {
		p.Category = c.Ref()
	}

	prev, existed := st.products[p.ID]
	st.products[p.ID] = p
	switch {
	case !existed:
		target.productIDs = append(target.productIDs, p.ID)
	case prev.PartnerID != p.PartnerID:
		if from, ok := st.partners[prev.PartnerID]; ok {
			from.productIDs = removeID(from.productIDs, p.ID)
		}
		target.productIDs = append(target.productIDs, p.ID)
	}
	return true
}

func (st *state) removeProduct(id int64) {
	p, ok := st.products[id]
	if !ok {
		return
	}
	delete(st.products, id)
	if rec, ok := st.partners[p.PartnerID]; ok {
		rec.productIDs = removeID(rec.productIDs, id)
	}
}

// normalizeFilter enforces that a non-nil filter names a category of the
// selected partner, and that the selection names a known partner.
func (st *state) normalizeFilter() {
	if st.selected != nil {
		if _, ok := st.partners[*st.selected]; !ok {
			st.selected = nil
		}
	}
	if st.filter == nil {
		return
	}
	if st.selected == nil || !st.ownsCategory(*st.selected, *st.filter) {
		st.filter = nil
	}
}

func (st *state) ownsCategory(partnerID, categoryID int64) bool {
	c, ok := st.categories[categoryID]
	return ok && c.PartnerID == partnerID
}

func (st *state) partnerCategories(partnerID int64) []domain.Category {
	rec, ok := st.partners[partnerID]
	if !ok {
		return nil
	}
	out := make([]domain.Category, 0, len(rec.categoryIDs))
	for _, id := range rec.categoryIDs {
		out = append(out, st.categories[id])
	}
	return out
}

func (st *state) partnerProducts(partnerID int64) []domain.Product {
	rec, ok := st.partners[partnerID]
	if !ok {
		return nil
	}
	out := make([]domain.Product, 0, len(rec.productIDs))
	for _, id := range rec.productIDs {
		out = append(out, st.products[id].Clone())
	}
	return out
}

// nested restores the gateway shape of one partner.
func (st *state) nested(partnerID int64) (domain.Partner, bool) {
	rec, ok := st.partners[partnerID]
	if !ok {
		return domain.Partner{}, false
	}
	p := rec.partner
	p.Categories = st.partnerCategories(partnerID)
	p.Products = st.partnerProducts(partnerID)
	return p, true
}

func removeID(ids []int64, id int64) []int64 {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/vbonduro/aliados/internal/domain"
)

// partnerLister is the subset of gateway.Gateway that Store requires.
type partnerLister interface {
	ListPartners(ctx context.Context) ([]domain.Partner, error)
}

// Store holds the partner list and the selected partner's derived views. All
// state transitions happen under one mutex; gateway calls never hold it, so a
// reader can never observe a half-applied change.
type Store struct {
	gateway   partnerLister
	collation language.Tag
	logger    *slog.Logger

	mu sync.Mutex
	st state
}

func NewStore(gateway partnerLister, collation language.Tag, logger *slog.Logger) *Store {
	return &Store{
		gateway:   gateway,
		collation: collation,
		logger:    logger,
		st:        newState(),
	}
}

// Snapshot is a consistent, caller-owned view of the store.
type Snapshot struct {
	Partners          []domain.Partner  `json:"partners"`
	SelectedPartnerID *int64            `json:"selectedPartnerId"`
	Categories        []domain.Category `json:"categories"`
	Products          []domain.Product  `json:"products"`
	ActiveFilter      *int64            `json:"activeFilter"`
	Visible           []domain.Product  `json:"visible"`
}

// LoadPartners replaces the partner list with the gateway's. When calls
// overlap, the one that completes last wins. On failure the store is left as
// it was.
func (s *Store) LoadPartners(ctx context.Context) error {
	partners, err := s.gateway.ListPartners(ctx)
	if err != nil {
		s.logger.Error("failed to load partners", "error", err)
		return fmt.Errorf("failed to load partners: %w", err)
	}

	next := ingest(partners)
	for _, pr := range next.foreignProducts() {
		s.logger.Warn("product category belongs to another partner",
			"product_id", pr.ID, "partner_id", pr.PartnerID, "category_id", pr.CategoryID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next.selected = s.st.selected
	next.filter = s.st.filter
	next.normalizeFilter()
	s.st = next

	s.logger.Info("partners loaded", "partners", len(next.partnerOrder), "categories", len(next.categories), "products", len(next.products))
	return nil
}

// SelectPartner makes id the active partner and clears the category filter.
// An unknown id leaves no partner selected.
func (s *Store) SelectPartner(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.filter = nil
	if _, ok := s.st.partners[id]; !ok {
		s.logger.Debug("select unknown partner", "partner_id", id)
		s.st.selected = nil
		return
	}
	s.st.selected = &id
}

// Deselect clears the selected partner, its derived lists and the filter.
func (s *Store) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.selected = nil
	s.st.filter = nil
}

// ApplyFilter restricts the visible products to categoryID. The category must
// belong to the selected partner; otherwise a *domain.ValidationError is
// returned and the filter is unchanged.
func (s *Store) ApplyFilter(categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.selected == nil {
		return domain.NewValidationError("categoryId", "no partner selected")
	}
	if !s.st.ownsCategory(*s.st.selected, categoryID) {
		return domain.NewValidationError("categoryId", "category does not belong to the selected partner")
	}
	s.st.filter = &categoryID
	return nil
}

// ClearFilter shows every product of the selected partner.
func (s *Store) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.filter = nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Partners:   make([]domain.Partner, 0, len(s.st.partnerOrder)),
		Categories: []domain.Category{},
		Products:   []domain.Product{},
	}
	for _, id := range s.st.partnerOrder {
		snap.Partners = append(snap.Partners, s.st.partners[id].partner)
	}
	if s.st.selected != nil {
		id := *s.st.selected
		snap.SelectedPartnerID = &id
		snap.Categories = s.st.partnerCategories(id)
		snap.Products = s.st.partnerProducts(id)
	}
	if s.st.filter != nil {
		f := *s.st.filter
		snap.ActiveFilter = &f
	}
	snap.Visible = FilterProducts(snap.Products, snap.ActiveFilter)
	return snap
}

// Partner returns the cached partner with its categories and products nested.
func (s *Store) Partner(id int64) (domain.Partner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.nested(id)
}

// Partners returns every cached partner in insertion order, nested.
func (s *Store) Partners() []domain.Partner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Partner, 0, len(s.st.partnerOrder))
	for _, id := range s.st.partnerOrder {
		p, _ := s.st.nested(id)
		out = append(out, p)
	}
	return out
}

func (s *Store) Category(id int64) (domain.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.categories[id]
	return c, ok
}

func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p.Clone(), ok
}

// Categories lists every cached category ordered by partner, then name.
func (s *Store) Categories() []domain.Category {
	s.mu.Lock()
	all := make([]domain.Category, 0, len(s.st.categories))
	for _, id := range s.st.partnerOrder {
		all = append(all, s.st.partnerCategories(id)...)
	}
	s.mu.Unlock()
	return SortCategories(all, s.collation)
}

// apply runs fn against the state under the lock.
func (s *Store) apply(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

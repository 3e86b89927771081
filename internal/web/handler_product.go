package web

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/aliados/internal/domain"
)

// handleListProducts returns the selected partner's products after the active
// category filter.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Visible)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, maxProductImages); err != nil {
		s.writeError(w, r, err)
		return
	}

	in, err := productForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.Images, err = s.formImages(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.reconciler.CreateProduct(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleUpdateProduct replaces the images only when new files are uploaded.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.parseForm(w, r, maxProductImages); err != nil {
		s.writeError(w, r, err)
		return
	}

	in, err := productForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.Images, err = s.formImages(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.Images == nil {
		current, ok := s.store.Product(id)
		if !ok {
			s.writeError(w, r, domain.ErrNotFound)
			return
		}
		in.Images = current.Images
	}

	p, err := s.reconciler.UpdateProduct(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.reconciler.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productForm(r *http.Request) (domain.ProductInput, error) {
	in := domain.ProductInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	raw := strings.TrimSpace(r.FormValue("price"))
	if raw == "" {
		return in, domain.NewValidationError("price", "is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return in, domain.NewValidationError("price", "must be a number")
	}
	in.Price = price


	if in.CategoryID, err = formID(r, "categoryId"); err != nil {
		return in, err
	}
	if in.PartnerID, err = formID(r, "partnerId"); err != nil {
		return in, err
	}
	return in, nil
}

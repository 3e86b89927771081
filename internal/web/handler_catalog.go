package web

import (
	"net/http"
)

type selectionRequest struct {
	PartnerID *int64 `json:"partnerId"`
}

type filterRequest struct {
	CategoryID *int64 `json:"categoryId"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LoadPartners(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleSelect selects a partner, or deselects when partnerId is null. An
// unknown id leaves nothing selected.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.PartnerID == nil {
		s.store.Deselect()
	} else {
		s.store.SelectPartner(*req.PartnerID)
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleFilter narrows the visible products to one category, or clears the
// filter when categoryId is null.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.CategoryID == nil {
		s.store.ClearFilter()
	} else if err := s.store.ApplyFilter(*req.CategoryID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

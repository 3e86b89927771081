package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/aliados/internal/domain"
)

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Partners())
}

func (s *Server) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		s.writeError(w, r, err)
		return
	}

	image, err := s.formImage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.reconciler.CreatePartner(r.Context(), domain.PartnerInput{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Image: image,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleUpdatePartner keeps the current image when no new one is uploaded.
func (s *Server) handleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.parseForm(w, r, 1); err != nil {
		s.writeError(w, r, err)
		return
	}

	image, err := s.formImage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if image == "" {
		current, ok := s.store.Partner(id)
		if !ok {
			s.writeError(w, r, domain.ErrNotFound)
			return
		}
		image = current.Image
	}

	p, err := s.reconciler.UpdatePartner(r.Context(), id, domain.PartnerInput{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Image: image,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.reconciler.DeletePartner(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"net/http"
)

// handleCatalog handles GET /catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Catalog()
	if err != nil {
		s.fail(w, r, "api.catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

package server

import "net/http"

// handleVerify answers whether a hash was previously notarized.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	hash, err := requirePathHash(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp, err := s.service.Verify(r.Context(), hash)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

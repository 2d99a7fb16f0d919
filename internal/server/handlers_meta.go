package server

import (
	"net/http"

	"notary/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	count, err := s.records.CountRecords(r.Context())
	if err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.InfoResponse{
		Version:        s.version,
		StorageBackend: s.blobs.Name(),
		Network:        s.network,
		RecordCount:    count,
	})
}

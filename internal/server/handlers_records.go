package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"notary/internal/api"
	"notary/internal/models"
)

const defaultRecordsLimit = 50

// handleListRecords returns notarization records, newest first.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntDefault(r, "limit", defaultRecordsLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	offset, err := queryIntDefault(r, "offset", 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	records, err := s.records.ListRecords(r.Context(), limit, offset)
	if err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}
	total, err := s.records.CountRecords(r.Context())
	if err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}

	if records == nil {
		records = []models.NotarizationRecord{}
	}
	s.writeJSON(w, http.StatusOK, api.RecordsResponse{
		Records: records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// handleBlobContent streams a stored blob back to the caller.
func (s *Server) handleBlobContent(w http.ResponseWriter, r *http.Request) {
	blobID := strings.TrimSpace(r.PathValue("blobId"))
	if blobID == "" {
		s.writeServiceError(w, r, badRequestCode(fmt.Errorf("blob id is required"), ErrCodeMissingRequired))
		return
	}

	blob, err := s.blobs.Open(r.Context(), blobID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeServiceError(w, r, notFoundCode(fmt.Errorf("blob not found"), ErrCodeBlobNotFound))
			return
		}
		s.writeServiceError(w, r, internalError(err))
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, blob); err != nil {
		s.log().Error("stream blob", "blob_id", blobID, "error", err)
	}
}

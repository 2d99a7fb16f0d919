package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// handleNotarize accepts a multipart upload, stores the bytes, and
// returns the proof of notarization.
func (s *Server) handleNotarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := s.uploadedFile(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer file.Close()

	resp, err := s.service.Notarize(r.Context(), file, sanitizeFilename(header.Filename), header.Header.Get("Content-Type"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) uploadedFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(s.multipartMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, badRequestCode(fmt.Errorf("upload exceeds %d byte limit", s.maxUploadBytes), ErrCodeRequestTooLarge)
		}
		return nil, nil, badRequest(fmt.Errorf("invalid multipart request: %w", err))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired)
		}
		return nil, nil, badRequest(fmt.Errorf("invalid file field: %w", err))
	}
	return file, header, nil
}

// sanitizeFilename strips any client-supplied directory components.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

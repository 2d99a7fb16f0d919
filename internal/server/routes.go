package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Notarization and verification.
	mux.HandleFunc("POST /api/notarize", s.handleNotarize)
	mux.HandleFunc("GET /api/verify/{hash}", s.handleVerify)

	// Record listing and blob content.
	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("GET /api/blobs/{blobId}", s.handleBlobContent)

	// Transaction sponsorship relay.
	mux.HandleFunc("POST /api/sponsor", s.handleSponsor)
	mux.HandleFunc("POST /api/sponsor/complete", s.handleSponsorComplete)
	mux.HandleFunc("POST /api/sponsor/sign", s.handleSponsorSign)

	return mux
}

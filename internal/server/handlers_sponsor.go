package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"notary/internal/api"
	"notary/internal/enoki"
)

// handleSponsor relays a sponsorship request to Enoki. The relay is
// stateless; nothing about the transaction is recorded locally.
func (s *Server) handleSponsor(w http.ResponseWriter, r *http.Request) {
	if s.enoki == nil {
		s.writeSponsorshipDisabled(w, r)
		return
	}

	var req api.SponsorRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	txBytes, err := requireField(req.TransactionBlockKindBytes, "transactionBlockKindBytes")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	token, err := requireField(req.ZkLoginJWT, "zkloginJwt")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := checkJWTShape(token); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result, err := s.enoki.Sponsor(r.Context(), txBytes, token)
	if err != nil {
		s.writeServiceError(w, r, sponsorError(err))
		return
	}

	s.writeRawJSON(w, http.StatusOK, result.Raw)
}

// handleSponsorComplete relays the user signature for a sponsored
// transaction digest.
func (s *Server) handleSponsorComplete(w http.ResponseWriter, r *http.Request) {
	if s.enoki == nil {
		s.writeSponsorshipDisabled(w, r)
		return
	}

	var req api.SponsorCompleteRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	digest, err := requireField(req.Digest, "digest")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	userSignature, err := requireField(req.UserSignature, "userSignature")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result, err := s.enoki.Complete(r.Context(), digest, userSignature)
	if err != nil {
		s.writeServiceError(w, r, sponsorError(err))
		return
	}

	s.writeRawJSON(w, http.StatusOK, result.Raw)
}

// handleSponsorSign signs transaction bytes with the backend key.
func (s *Server) handleSponsorSign(w http.ResponseWriter, r *http.Request) {
	if s.signer == nil {
		s.writeServiceError(w, r, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeSignerFailed,
			fmt.Errorf("backend signer is not configured")))
		return
	}

	var req api.SponsorSignRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	txBytes, err := requireField(req.TxBytes, "txBytes")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	sig, err := s.signer.Sign(txBytes)
	if err != nil {
		s.writeServiceError(w, r, badRequest(err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.SponsorSignResponse{
		Signature:  sig.Signature,
		PublicKey:  sig.PublicKey,
		SuiAddress: sig.Address,
	})
}

func (s *Server) writeSponsorshipDisabled(w http.ResponseWriter, r *http.Request) {
	s.writeErrorReq(w, r, http.StatusNotImplemented,
		makeAPIError(http.StatusNotImplemented, "not_implemented", ErrCodeNotImplemented,
			fmt.Errorf("transaction sponsorship is not configured")))
}

// checkJWTShape verifies the token parses as a JWT before the relay. The
// signature is not checked here; Enoki validates the zkLogin proof.
func checkJWTShape(token string) error {
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, jwt.MapClaims{}); err != nil {
		return badRequestCode(fmt.Errorf("zkloginJwt is not a valid JWT: %w", err), ErrCodeInvalidJWT)
	}
	return nil
}

// sponsorError maps Enoki failures onto the API error taxonomy, keeping
// the upstream message so callers can see what Enoki rejected.
func sponsorError(err error) error {
	var upstream *enoki.UpstreamError
	if errors.As(err, &upstream) {
		return upstreamFailure(fmt.Errorf("sponsorship failed: %w", upstream), ErrCodeSponsorFailed)
	}
	return upstreamFailure(fmt.Errorf("sponsorship failed: %w", err), ErrCodeSponsorFailed)
}

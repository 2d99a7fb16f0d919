package api

import "notary/internal/models"

// ErrorResponse is the JSON error envelope returned by the HTTP API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// NotarizeResponse is returned by POST /api/notarize.
type NotarizeResponse struct {
	FileHash  string `json:"file_hash"`
	Filename  string `json:"filename"`
	Filetype  string `json:"filetype"`
	BlobID    string `json:"blobId"`
	WalrusURL string `json:"walrus_url"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// VerifyResponse is returned by GET /api/verify/{hash}.
type VerifyResponse struct {
	Hash      string `json:"hash"`
	BlobID    string `json:"blobId"`
	WalrusURL string `json:"walrus_url"`
	Filename  string `json:"filename,omitempty"`
	StoredAt  string `json:"storedAt"`
}

// SponsorRequest starts transaction sponsorship.
type SponsorRequest struct {
	TransactionBlockKindBytes string `json:"transactionBlockKindBytes"`
	ZkLoginJWT                string `json:"zkloginJwt"`
}

// SponsorCompleteRequest finishes transaction sponsorship.
type SponsorCompleteRequest struct {
	Digest        string `json:"digest"`
	UserSignature string `json:"userSignature"`
}

// SponsorSignRequest asks the backend signer to sign transaction bytes.
type SponsorSignRequest struct {
	TxBytes string `json:"txBytes"`
}

// SponsorSignResponse carries the backend signature over txBytes.
type SponsorSignResponse struct {
	Signature  string `json:"signature"`
	PublicKey  string `json:"pubkey"`
	SuiAddress string `json:"suiAddress"`
}

// RecordsResponse is the paged record listing.
type RecordsResponse struct {
	Records []models.NotarizationRecord `json:"records"`
	Total   int                         `json:"total"`
	Limit   int                         `json:"limit,omitempty"`
	Offset  int                         `json:"offset,omitempty"`
}

// InfoResponse describes the running server.
type InfoResponse struct {
	Version        string `json:"version"`
	StorageBackend string `json:"storage_backend"`
	Network        string `json:"network"`
	RecordCount    int    `json:"record_count"`
}

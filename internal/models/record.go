package models

import (
	"regexp"
	"strings"
	"time"
)

// HashHexLength is the length of a lowercase hex SHA-256 digest.
const HashHexLength = 64

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// NotarizationRecord maps a file content hash to its stored blob location.
type NotarizationRecord struct {
	Hash       string    `json:"hash"`
	BlobID     string    `json:"blobId"`
	StorageURL string    `json:"storageUrl,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	MediaType  string    `json:"mediaType,omitempty"`
	SizeBytes  int64     `json:"sizeBytes,omitempty"`
	StoredAt   time.Time `json:"storedAt"`
}

// NormalizeHash returns the canonical lowercase form of a candidate hash.
func NormalizeHash(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsValidHash reports whether value is a 64-character lowercase hex digest.
// Callers normalize first; mixed-case input fails here on purpose.
func IsValidHash(value string) bool {
	return hashPattern.MatchString(value)
}

package server

import (
	"fmt"
	"net/http"
	"strings"

	"notary/internal/models"
)

// requirePathHash extracts and normalizes the {hash} path segment. The
// shape check runs before any store access.
func requirePathHash(r *http.Request) (string, error) {
	hash := models.NormalizeHash(r.PathValue("hash"))
	if !models.IsValidHash(hash) {
		return "", badRequestCode(fmt.Errorf("hash must be a 64-character hex SHA-256 digest"), ErrCodeInvalidHash)
	}
	return hash, nil
}

func requireField(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", badRequestCode(fmt.Errorf("%s is required", name), ErrCodeMissingRequired)
	}
	return value, nil
}

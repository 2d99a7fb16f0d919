// Package signer signs serialized transactions with the backend's ed25519
// key and derives the matching Sui address.
package signer

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ed25519SchemeFlag prefixes the public key in Sui address derivation.
const ed25519SchemeFlag byte = 0x00

// Signer holds the backend ed25519 keypair.
type Signer struct {
	private ed25519.PrivateKey
}

// Signature is the result of signing transaction bytes.
type Signature struct {
	Signature string `json:"signature"`
	PublicKey string `json:"pubkey"`
	Address   string `json:"suiAddress"`
}

// New builds a signer from a base64-encoded ed25519 seed or private key.
func New(encodedKey string) (*Signer, error) {
	encodedKey = strings.TrimSpace(encodedKey)
	if encodedKey == "" {
		return nil, fmt.Errorf("signer key is required")
	}

	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode signer key: %w", err)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return &Signer{private: ed25519.NewKeyFromSeed(raw)}, nil
	case ed25519.PrivateKeySize:
		return &Signer{private: ed25519.PrivateKey(raw)}, nil
	default:
		return nil, fmt.Errorf("signer key must be a %d or %d byte ed25519 key", ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

// Sign signs base64-encoded transaction bytes and returns the base64
// signature, public key, and the derived Sui address.
func (s *Signer) Sign(txBytesB64 string) (*Signature, error) {
	if s == nil {
		return nil, fmt.Errorf("signer is not configured")
	}

	txBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(txBytesB64))
	if err != nil {
		return nil, fmt.Errorf("decode transaction bytes: %w", err)
	}

	sig := ed25519.Sign(s.private, txBytes)
	pub := s.private.Public().(ed25519.PublicKey)

	return &Signature{
		Signature: base64.StdEncoding.EncodeToString(sig),
		PublicKey: base64.StdEncoding.EncodeToString(pub),
		Address:   s.Address(),
	}, nil
}

// Address derives the Sui address for the signer's public key: the
// blake2b-256 digest of the scheme flag followed by the raw key bytes.
func (s *Signer) Address() string {
	pub := s.private.Public().(ed25519.PublicKey)
	digest := blake2b.Sum256(append([]byte{ed25519SchemeFlag}, pub...))
	return "0x" + hex.EncodeToString(digest[:])
}

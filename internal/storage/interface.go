package storage

import (
	"context"
	"io"
)

// PutMeta carries upload metadata alongside the raw bytes.
type PutMeta struct {
	Filename  string
	MediaType string
}

// PutResult describes one stored blob.
type PutResult struct {
	BlobID    string
	URL       string
	SizeBytes int64
}

// Backend is the blob-storage abstraction the notarization workflow
// delegates to. Implementations are Walrus and a local CAS fallback.
type Backend interface {
	// Put stores the bytes and returns an opaque blob identifier plus a
	// retrieval URL. URL may be empty when the backend has no public
	// address for the blob.
	Put(ctx context.Context, r io.Reader, meta PutMeta) (PutResult, error)
	// Open returns a reader for a previously stored blob.
	Open(ctx context.Context, blobID string) (io.ReadCloser, error)
	// Name identifies the backend in logs and the info endpoint.
	Name() string
}

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"notary/internal/models"
)

// Local stores blob bytes in a local content-addressed tree. It stands in
// for Walrus during offline development and hermetic tests; blob IDs are
// the content digest itself, so uploads are naturally idempotent.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a local blob backend rooted at root. baseURL, when set,
// is used to build retrieval URLs of the form {baseURL}/api/blobs/{id}.
func NewLocal(root, baseURL string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}, nil
}

// Name identifies the backend.
func (l *Local) Name() string { return "local" }

// Put streams bytes to a temp file, hashes while copying, and renames the
// file into the digest-keyed tree. A blob that already exists is reused.
func (l *Local) Put(ctx context.Context, r io.Reader, _ PutMeta) (PutResult, error) {
	var zero PutResult
	if l == nil {
		return zero, fmt.Errorf("local storage is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(l.root, "tmp"), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	digest := hex.EncodeToString(h.Sum(nil))
	result := PutResult{BlobID: digest, URL: l.blobURL(digest), SizeBytes: n}
	dst := l.pathForDigest(digest)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return zero, err
	}

	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return result, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return zero, err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return result, nil
		}
		cleanup()
		return zero, err
	}

	return result, nil
}

// Open returns a reader for stored blob content.
func (l *Local) Open(ctx context.Context, blobID string) (io.ReadCloser, error) {
	if l == nil {
		return nil, fmt.Errorf("local storage is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	digest := models.NormalizeHash(blobID)
	if !models.IsValidHash(digest) {
		return nil, fmt.Errorf("invalid local blob id")
	}
	return os.Open(l.pathForDigest(digest))
}

func (l *Local) blobURL(digest string) string {
	if l.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/blobs/%s", l.baseURL, digest)
}

func (l *Local) pathForDigest(digest string) string {
	return filepath.Join(l.root, "sha256", digest[0:2], digest[2:4], digest)
}

var _ Backend = (*Local)(nil)

package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"notary/internal/models"
	"notary/internal/storage"
	"notary/internal/store"
)

func testService(t *testing.T) (*NotaryService, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "notary.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	blobs, err := storage.NewLocal(t.TempDir(), "http://127.0.0.1:7411")
	if err != nil {
		t.Fatalf("new local backend: %v", err)
	}

	return NewNotaryService(st, blobs, "https://walruscan.com/testnet/blob", slog.New(slog.DiscardHandler)), st
}

func TestNotarizeThenVerify(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	content := []byte("signed contract v1")
	sum := sha256.Sum256(content)
	wantHash := hex.EncodeToString(sum[:])

	resp, err := svc.Notarize(ctx, strings.NewReader(string(content)), "contract.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("notarize: %v", err)
	}
	if resp.FileHash != wantHash {
		t.Errorf("file hash = %q, want %q", resp.FileHash, wantHash)
	}
	if resp.Filename != "contract.pdf" || resp.Filetype != "application/pdf" {
		t.Errorf("metadata = %q/%q", resp.Filename, resp.Filetype)
	}
	if resp.BlobID == "" || resp.WalrusURL == "" {
		t.Errorf("blob reference incomplete: %+v", resp)
	}

	verified, err := svc.Verify(ctx, wantHash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Hash != wantHash || verified.BlobID != resp.BlobID {
		t.Errorf("verify = %+v, want hash %q blob %q", verified, wantHash, resp.BlobID)
	}
	if verified.StoredAt == "" {
		t.Error("storedAt is empty")
	}
}

func TestNotarizeDefaultsMediaType(t *testing.T) {
	svc, _ := testService(t)

	resp, err := svc.Notarize(context.Background(), strings.NewReader("x"), "note.bin", "")
	if err != nil {
		t.Fatalf("notarize: %v", err)
	}
	if resp.Filetype != "application/octet-stream" {
		t.Errorf("filetype = %q, want application/octet-stream", resp.Filetype)
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	svc, _ := testService(t)

	for _, raw := range []string{"", "abc", strings.Repeat("g", 64), strings.Repeat("a", 63)} {
		_, err := svc.Verify(context.Background(), raw)
		if err == nil {
			t.Fatalf("verify(%q) succeeded, want error", raw)
		}
		if status := httpStatusFromError(err); status != http.StatusBadRequest {
			t.Errorf("verify(%q) status = %d, want 400", raw, status)
		}
	}
}

func TestVerifyUnknownHashIsNotFound(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Verify(context.Background(), strings.Repeat("a", 64))
	if err == nil {
		t.Fatal("verify succeeded, want not found")
	}
	if status := httpStatusFromError(err); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestVerifyFallsBackToExplorerURL(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	hash := strings.Repeat("b", 64)
	record := &models.NotarizationRecord{Hash: hash, BlobID: "blob-xyz"}
	if err := st.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	resp, err := svc.Verify(ctx, hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := "https://walruscan.com/testnet/blob/blob-xyz"
	if resp.WalrusURL != want {
		t.Errorf("walrus_url = %q, want %q", resp.WalrusURL, want)
	}
}

type failingBackend struct{}

func (failingBackend) Put(ctx context.Context, r io.Reader, meta storage.PutMeta) (storage.PutResult, error) {
	io.Copy(io.Discard, r)
	return storage.PutResult{}, errors.New("publisher unavailable")
}

func (failingBackend) Open(ctx context.Context, blobID string) (io.ReadCloser, error) {
	return nil, errors.New("publisher unavailable")
}

func (failingBackend) Name() string { return "failing" }

func TestNotarizeUploadFailureWritesNoRecord(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "notary.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	svc := NewNotaryService(st, failingBackend{}, "", slog.New(slog.DiscardHandler))
	ctx := context.Background()

	content := []byte("never stored")
	sum := sha256.Sum256(content)

	if _, err := svc.Notarize(ctx, strings.NewReader(string(content)), "f.txt", "text/plain"); err == nil {
		t.Fatal("notarize succeeded with failing backend")
	}

	record, err := st.FindRecordByHash(ctx, hex.EncodeToString(sum[:]))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record != nil {
		t.Fatalf("record written despite upload failure: %+v", record)
	}
}

type failingRecordStore struct{}

func (failingRecordStore) UpsertRecord(ctx context.Context, record *models.NotarizationRecord) error {
	return errors.New("disk full")
}

func (failingRecordStore) FindRecordByHash(ctx context.Context, hash string) (*models.NotarizationRecord, error) {
	return nil, errors.New("disk full")
}

func (failingRecordStore) ListRecords(ctx context.Context, limit, offset int) ([]models.NotarizationRecord, error) {
	return nil, errors.New("disk full")
}

func (failingRecordStore) CountRecords(ctx context.Context) (int, error) {
	return 0, errors.New("disk full")
}

// A record-store failure after a successful upload must not fail the
// request: the blob is stored and the caller still gets the proof.
func TestNotarizeSurvivesRecordStoreFailure(t *testing.T) {
	blobs, err := storage.NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local backend: %v", err)
	}

	svc := NewNotaryService(failingRecordStore{}, blobs, "", slog.New(slog.DiscardHandler))

	resp, err := svc.Notarize(context.Background(), strings.NewReader("still notarized"), "f.txt", "text/plain")
	if err != nil {
		t.Fatalf("notarize: %v", err)
	}
	if resp.FileHash == "" || resp.BlobID == "" {
		t.Errorf("incomplete response: %+v", resp)
	}
}

func TestNotarizeIsIdempotentPerContent(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	first, err := svc.Notarize(ctx, strings.NewReader("same bytes"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("first notarize: %v", err)
	}
	second, err := svc.Notarize(ctx, strings.NewReader("same bytes"), "b.txt", "text/markdown")
	if err != nil {
		t.Fatalf("second notarize: %v", err)
	}

	if first.FileHash != second.FileHash {
		t.Fatalf("hashes differ: %q vs %q", first.FileHash, second.FileHash)
	}

	count, err := st.CountRecords(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("record count = %d, want 1", count)
	}

	// Re-upload replaces the record's metadata wholesale.
	record, err := st.FindRecordByHash(ctx, second.FileHash)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.Filename != "b.txt" || record.MediaType != "text/markdown" {
		t.Errorf("record = %q/%q, want b.txt/text/markdown", record.Filename, record.MediaType)
	}
}

func TestExplorerURLEmptyWithoutBase(t *testing.T) {
	svc := NewNotaryService(failingRecordStore{}, failingBackend{}, "", slog.New(slog.DiscardHandler))
	if got := svc.explorerURL("blob"); got != "" {
		t.Errorf("explorerURL = %q, want empty", got)
	}
	svc = NewNotaryService(failingRecordStore{}, failingBackend{}, "https://scan.example/blob/", slog.New(slog.DiscardHandler))
	if got, want := svc.explorerURL("b1"), "https://scan.example/blob/b1"; got != want {
		t.Errorf("explorerURL = %q, want %q", got, want)
	}
}

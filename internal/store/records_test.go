package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notary/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testRecord(hash string) *models.NotarizationRecord {
	return &models.NotarizationRecord{
		Hash:       hash,
		BlobID:     "blob-" + hash[:8],
		StorageURL: "https://walruscan.com/testnet/blob/blob-" + hash[:8],
		Filename:   "doc.pdf",
		MediaType:  "application/pdf",
		SizeBytes:  1234,
		StoredAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestFreshStoreBehavesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no backing artifact before open")
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	got, err := st.FindRecordByHash(ctx, strings.Repeat("a", 64))
	if err != nil {
		t.Fatalf("lookup on fresh store: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}

	// First upsert needs no special initialization call.
	if err := st.UpsertRecord(ctx, testRecord(strings.Repeat("a", 64))); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
}

func TestUpsertAndFind(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	hash := strings.Repeat("ab", 32)
	record := testRecord(hash)
	if err := st.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := st.FindRecordByHash(ctx, hash)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.BlobID != record.BlobID {
		t.Fatalf("expected blob id %q, got %q", record.BlobID, got.BlobID)
	}
	if got.StorageURL != record.StorageURL {
		t.Fatalf("expected storage url %q, got %q", record.StorageURL, got.StorageURL)
	}
	if !got.StoredAt.Equal(record.StoredAt) {
		t.Fatalf("expected stored_at %v, got %v", record.StoredAt, got.StoredAt)
	}
}

func TestUpsertReplacesNotMerges(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	hash := strings.Repeat("cd", 32)
	first := testRecord(hash)
	if err := st.UpsertRecord(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &models.NotarizationRecord{
		Hash:     hash,
		BlobID:   "blob-second",
		StoredAt: first.StoredAt.Add(time.Minute),
		// StorageURL, Filename, MediaType, SizeBytes intentionally unset.
	}
	if err := st.UpsertRecord(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := st.FindRecordByHash(ctx, hash)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.BlobID != "blob-second" {
		t.Fatalf("expected second blob id, got %q", got.BlobID)
	}
	if got.StorageURL != "" || got.Filename != "" || got.MediaType != "" || got.SizeBytes != 0 {
		t.Fatalf("expected full replacement, got merged fields: %+v", got)
	}

	count, err := st.CountRecords(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}
}

func TestUpsertIsolationAcrossHashes(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	h1 := strings.Repeat("1a", 32)
	h2 := strings.Repeat("2b", 32)
	if err := st.UpsertRecord(ctx, testRecord(h1)); err != nil {
		t.Fatalf("upsert h1: %v", err)
	}

	got, err := st.FindRecordByHash(ctx, h2)
	if err != nil {
		t.Fatalf("find h2: %v", err)
	}
	if got != nil {
		t.Fatalf("upsert under h1 must not affect lookup under h2, got %+v", got)
	}

	if err := st.UpsertRecord(ctx, testRecord(h2)); err != nil {
		t.Fatalf("upsert h2: %v", err)
	}
	first, err := st.FindRecordByHash(ctx, h1)
	if err != nil {
		t.Fatalf("find h1: %v", err)
	}
	if first == nil || first.BlobID != "blob-"+h1[:8] {
		t.Fatalf("record under h1 disturbed by write under h2: %+v", first)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	mixed := strings.Repeat("Ab", 32)
	record := testRecord(models.NormalizeHash(mixed))
	if err := st.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := st.FindRecordByHash(ctx, mixed)
	if err != nil {
		t.Fatalf("find mixed case: %v", err)
	}
	if got == nil {
		t.Fatal("expected record for mixed-case lookup, got nil")
	}
	if got.Hash != strings.ToLower(mixed) {
		t.Fatalf("expected stored hash lowercase, got %q", got.Hash)
	}
}

func TestUpsertLowercasesDefensively(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	mixed := strings.Repeat("Ef", 32)
	record := testRecord(strings.ToLower(mixed))
	record.Hash = mixed
	if err := st.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := st.FindRecordByHash(ctx, strings.ToLower(mixed))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}

	// A second write under the other casing must replace, not duplicate.
	record.Hash = strings.ToUpper(mixed)
	record.BlobID = "blob-replaced"
	if err := st.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	count, err := st.CountRecords(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("case variation produced duplicate entries: %d", count)
	}
}

func TestFindMissingReturnsNilNotError(t *testing.T) {
	st := testStore(t)

	got, err := st.FindRecordByHash(context.Background(), strings.Repeat("9", 64))
	if err != nil {
		t.Fatalf("expected no error for missing hash, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestUpsertValidation(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.UpsertRecord(ctx, nil); err == nil {
		t.Fatal("expected error for nil record")
	}
	if err := st.UpsertRecord(ctx, &models.NotarizationRecord{BlobID: "b"}); err == nil {
		t.Fatal("expected error for empty hash")
	}
	if err := st.UpsertRecord(ctx, &models.NotarizationRecord{Hash: strings.Repeat("a", 64)}); err == nil {
		t.Fatal("expected error for empty blob id")
	}
}

func TestListRecordsOrdering(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, h := range []string{strings.Repeat("a", 64), strings.Repeat("b", 64), strings.Repeat("c", 64)} {
		record := testRecord(h)
		record.StoredAt = base.Add(time.Duration(i) * time.Minute)
		if err := st.UpsertRecord(ctx, record); err != nil {
			t.Fatalf("upsert %s: %v", h, err)
		}
	}

	records, err := st.ListRecords(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Hash != strings.Repeat("c", 64) {
		t.Fatalf("expected newest first, got %q", records[0].Hash)
	}

	all, err := st.ListRecords(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	hash := strings.Repeat("7e", 32)
	if err := st.UpsertRecord(ctx, testRecord(hash)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.FindRecordByHash(ctx, hash)
	if err != nil {
		t.Fatalf("find after reopen: %v", err)
	}
	if got == nil {
		t.Fatal("record did not survive reopen")
	}
}

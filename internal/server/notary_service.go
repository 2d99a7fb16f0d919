package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"notary/internal/api"
	"notary/internal/models"
	"notary/internal/storage"
	"notary/internal/store"
)

// NotaryService orchestrates the notarization and verification workflows.
type NotaryService struct {
	records         store.RecordStore
	blobs           storage.Backend
	explorerBaseURL string
	logger          *slog.Logger
}

// NewNotaryService constructs a NotaryService.
func NewNotaryService(records store.RecordStore, blobs storage.Backend, explorerBaseURL string, logger *slog.Logger) *NotaryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotaryService{
		records:         records,
		blobs:           blobs,
		explorerBaseURL: strings.TrimRight(strings.TrimSpace(explorerBaseURL), "/"),
		logger:          logger,
	}
}

// Notarize hashes the content while streaming it to the blob backend,
// then records the hash → blob mapping. A record-store failure after a
// successful upload is logged but does not fail the request: the bytes
// are already durably stored and the caller holds the proof response.
func (s *NotaryService) Notarize(ctx context.Context, content io.Reader, filename, mediaType string) (*api.NotarizeResponse, error) {
	if content == nil {
		return nil, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired)
	}
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	hasher := sha256.New()
	result, err := s.blobs.Put(ctx, io.TeeReader(content, hasher), storage.PutMeta{
		Filename:  filename,
		MediaType: mediaType,
	})
	if err != nil {
		// No record is written: a record must never reference a blob
		// that was not actually stored.
		return nil, upstreamFailure(fmt.Errorf("upload to %s failed: %w", s.blobs.Name(), err), ErrCodeUploadFailed)
	}

	hash := hex.EncodeToString(hasher.Sum(nil))

	record := &models.NotarizationRecord{
		Hash:       hash,
		BlobID:     result.BlobID,
		StorageURL: result.URL,
		Filename:   filename,
		MediaType:  mediaType,
		SizeBytes:  result.SizeBytes,
		StoredAt:   time.Now().UTC(),
	}
	if err := s.records.UpsertRecord(ctx, record); err != nil {
		s.logger.Warn("failed to persist notarization record",
			"hash", hash, "blob_id", result.BlobID, "error", err)
	}

	return &api.NotarizeResponse{
		FileHash:  hash,
		Filename:  filename,
		Filetype:  mediaType,
		BlobID:    result.BlobID,
		WalrusURL: result.URL,
		SizeBytes: result.SizeBytes,
	}, nil
}

// Verify validates the candidate hash shape, then looks the record up.
// Malformed hashes never reach the store.
func (s *NotaryService) Verify(ctx context.Context, rawHash string) (*api.VerifyResponse, error) {
	hash := models.NormalizeHash(rawHash)
	if !models.IsValidHash(hash) {
		return nil, badRequestCode(fmt.Errorf("hash must be a 64-character hex SHA-256 digest"), ErrCodeInvalidHash)
	}

	record, err := s.records.FindRecordByHash(ctx, hash)
	if err != nil {
		return nil, storeFailure(err)
	}
	if record == nil {
		return nil, notFoundCode(fmt.Errorf("hash not found in notarization records"), ErrCodeHashNotFound)
	}

	url := record.StorageURL
	if url == "" {
		url = s.explorerURL(record.BlobID)
	}

	return &api.VerifyResponse{
		Hash:      record.Hash,
		BlobID:    record.BlobID,
		WalrusURL: url,
		Filename:  record.Filename,
		StoredAt:  record.StoredAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *NotaryService) explorerURL(blobID string) string {
	if s.explorerBaseURL == "" || blobID == "" {
		return ""
	}
	return s.explorerBaseURL + "/" + blobID
}

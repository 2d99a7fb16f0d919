package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"notary/internal/models"
)

const recordColumns = "hash, blob_id, storage_url, filename, media_type, size_bytes, stored_at"

// UpsertRecord inserts or fully replaces the record stored under its hash.
// The hash is lowercased defensively; a conflicting row is overwritten
// field by field, never merged.
func (s *Store) UpsertRecord(ctx context.Context, record *models.NotarizationRecord) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}

	record.Hash = models.NormalizeHash(record.Hash)
	record.BlobID = strings.TrimSpace(record.BlobID)
	if record.Hash == "" {
		return fmt.Errorf("hash is required")
	}
	if record.BlobID == "" {
		return fmt.Errorf("blob id is required")
	}
	if record.StoredAt.IsZero() {
		record.StoredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notarizations (hash, blob_id, storage_url, filename, media_type, size_bytes, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			blob_id = excluded.blob_id,
			storage_url = excluded.storage_url,
			filename = excluded.filename,
			media_type = excluded.media_type,
			size_bytes = excluded.size_bytes,
			stored_at = excluded.stored_at
	`,
		record.Hash,
		record.BlobID,
		nullIfEmpty(strings.TrimSpace(record.StorageURL)),
		nullIfEmpty(strings.TrimSpace(record.Filename)),
		nullIfEmpty(strings.TrimSpace(record.MediaType)),
		nullIfZero(record.SizeBytes),
		dbFormatTime(record.StoredAt),
	)
	return err
}

// FindRecordByHash returns the record stored under hash, or nil when absent.
// Lookup lowercases first, so mixed-case input is safe.
func (s *Store) FindRecordByHash(ctx context.Context, hash string) (*models.NotarizationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM notarizations WHERE hash = ?`, models.NormalizeHash(hash))
	return scanRecord(row)
}

// ListRecords returns records ordered by stored_at descending.
func (s *Store) ListRecords(ctx context.Context, limit, offset int) ([]models.NotarizationRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM notarizations ORDER BY stored_at DESC, hash ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.NotarizationRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, rows.Err()
}

// CountRecords returns the total number of notarization records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notarizations").Scan(&count)
	return count, err
}

func scanRecord(scanner interface {
	Scan(dest ...any) error
}) (*models.NotarizationRecord, error) {
	record := models.NotarizationRecord{}

	var storageURL, filename, mediaType sql.NullString
	var sizeBytes sql.NullInt64
	var storedAt string

	err := scanner.Scan(
		&record.Hash,
		&record.BlobID,
		&storageURL,
		&filename,
		&mediaType,
		&sizeBytes,
		&storedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record.StorageURL = storageURL.String
	record.Filename = filename.String
	record.MediaType = mediaType.String
	record.SizeBytes = sizeBytes.Int64

	parsedStoredAt, err := dbParseTime(storedAt)
	if err != nil {
		return nil, err
	}
	record.StoredAt = parsedStoredAt

	return &record, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func dbFormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func dbParseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", value, err)
	}
	return t.UTC(), nil
}

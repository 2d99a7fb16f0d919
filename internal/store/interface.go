package store

import (
	"context"

	"notary/internal/models"
)

// RecordStore is the persistence contract the notarization and
// verification workflows depend on.
type RecordStore interface {
	UpsertRecord(ctx context.Context, record *models.NotarizationRecord) error
	FindRecordByHash(ctx context.Context, hash string) (*models.NotarizationRecord, error)
	ListRecords(ctx context.Context, limit, offset int) ([]models.NotarizationRecord, error)
	CountRecords(ctx context.Context) (int, error)
}

var _ RecordStore = (*Store)(nil)

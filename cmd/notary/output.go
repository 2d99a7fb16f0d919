package main

import (
	"encoding/json"
	"fmt"
	"os"

	"notary/internal/models"
)

func writeJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func formatRecordLine(record models.NotarizationRecord) string {
	name := record.Filename
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s  %s  %s", record.Hash, record.StoredAt.UTC().Format("2006-01-02 15:04"), name)
}

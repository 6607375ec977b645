package airtable

import (
	"context"
	"fmt"

	store "github.com/sakif/jamstand/internal/airtable"
)

// HistoryRepository appends submission rows to the record history table.
// Rows are never read back or updated by this service.
type HistoryRepository struct {
	client *store.Client
	table  string
}

func NewHistoryRepository(client *store.Client, table string) *HistoryRepository {
	return &HistoryRepository{client: client, table: table}
}

func (r *HistoryRepository) CreateSubmission(ctx context.Context, userID, gameID, codeURL string) (string, error) {
	rec, err := r.client.CreateRecord(ctx, r.table, store.Fields{
		fieldHistoryCodeURL: codeURL,
		fieldHistoryGame:    []string{gameID},
		fieldHistoryUser:    []string{userID},
	})
	if err != nil {
		return "", fmt.Errorf("recording submission: %w", err)
	}
	return rec.ID, nil
}

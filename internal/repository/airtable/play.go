package airtable

import (
	"context"
	"fmt"

	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// PlayRepository appends play events. The table is write-only from the
// API's point of view; analytics reads it elsewhere.
type PlayRepository struct {
	client *store.Client
	table  string
}

func NewPlayRepository(client *store.Client, table string) *PlayRepository {
	return &PlayRepository{client: client, table: table}
}

func (r *PlayRepository) Create(ctx context.Context, play *model.Play) (*model.Play, error) {
	fields := store.Fields{
		fieldPlayID:   play.PlayID,
		fieldPlayGame: []string{play.GameID},
	}
	if play.PlayerID != "" {
		fields[fieldPlayPlayer] = []string{play.PlayerID}
	}
	rec, err := r.client.CreateRecord(ctx, r.table, fields)
	if err != nil {
		return nil, fmt.Errorf("recording play: %w", err)
	}

	out := *play
	out.RecordID = rec.ID
	return &out, nil
}

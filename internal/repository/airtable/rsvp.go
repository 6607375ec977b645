package airtable

import (
	"context"
	"fmt"

	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// RSVPRepository reads and writes event RSVPs.
type RSVPRepository struct {
	client *store.Client
	table  string
}

func NewRSVPRepository(client *store.Client, table string) *RSVPRepository {
	return &RSVPRepository{client: client, table: table}
}

func (r *RSVPRepository) FindByUserAndEvent(ctx context.Context, userID, event string) (*model.RSVP, error) {
	rec, err := r.client.First(ctx, r.table, store.ListOptions{
		Filter: store.And(
			store.ArrayJoinEquals(fieldRSVPUser, userID),
			store.Equals(fieldRSVPEvent, event),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("finding rsvp: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return rsvpFromRecord(rec), nil
}

func (r *RSVPRepository) ListByUser(ctx context.Context, userID string) ([]model.RSVP, error) {
	records, err := r.client.ListAll(ctx, r.table, store.ListOptions{
		Filter: store.ArrayJoinEquals(fieldRSVPUser, userID),
	})
	if err != nil {
		return nil, fmt.Errorf("listing rsvps for %s: %w", userID, err)
	}
	rsvps := make([]model.RSVP, 0, len(records))
	for i := range records {
		rsvps = append(rsvps, *rsvpFromRecord(&records[i]))
	}
	return rsvps, nil
}

func (r *RSVPRepository) Create(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	rec, err := r.client.CreateRecord(ctx, r.table, store.Fields{
		fieldRSVPID:    rsvp.RSVPID,
		fieldRSVPUser:  []string{rsvp.UserID},
		fieldRSVPEvent: rsvp.Event,
	})
	if err != nil {
		return nil, fmt.Errorf("creating rsvp: %w", err)
	}
	return rsvpFromRecord(rec), nil
}

func rsvpFromRecord(rec *store.Record) *model.RSVP {
	f := rec.Fields
	userIDs := f.LinkedIDs(fieldRSVPUser)
	userID := ""
	if len(userIDs) > 0 {
		userID = userIDs[0]
	}
	return &model.RSVP{
		RecordID: rec.ID,
		RSVPID:   f.String(fieldRSVPID),
		UserID:   userID,
		Event:    f.String(fieldRSVPEvent),
	}
}

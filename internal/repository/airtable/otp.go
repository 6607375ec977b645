package airtable

import (
	"context"
	"fmt"

	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// OTPRepository appends and reads one-time codes. Codes are never
// deleted; validity is purely a creation-time window, and a verified
// code simply stops mattering once a newer one exists.
type OTPRepository struct {
	client *store.Client
	table  string
}

func NewOTPRepository(client *store.Client, table string) *OTPRepository {
	return &OTPRepository{client: client, table: table}
}

func (r *OTPRepository) Create(ctx context.Context, email, code, token string) error {
	_, err := r.client.CreateRecord(ctx, r.table, store.Fields{
		fieldOTPEmail: email,
		fieldOTPCode:  code,
		fieldOTPToken: token,
	})
	if err != nil {
		return fmt.Errorf("storing one-time code: %w", err)
	}
	return nil
}

func (r *OTPRepository) LatestValid(ctx context.Context, email string, windowMinutes int) (*model.OneTimeCode, error) {
	records, err := r.client.ListAll(ctx, r.table, store.ListOptions{
		Filter: store.And(
			store.NormalizedEquals(fieldOTPEmail, email),
			store.CreatedWithinMinutes(windowMinutes),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("listing one-time codes: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	newest := &records[0]
	for i := range records {
		if records[i].CreatedTime.After(newest.CreatedTime) {
			newest = &records[i]
		}
	}
	return &model.OneTimeCode{
		ID:        newest.ID,
		Email:     newest.Fields.String(fieldOTPEmail),
		Code:      newest.Fields.String(fieldOTPCode),
		Token:     newest.Fields.String(fieldOTPToken),
		CreatedAt: newest.CreatedTime,
	}, nil
}

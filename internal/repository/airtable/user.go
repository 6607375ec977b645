package airtable

import (
	"context"
	"fmt"
	"sort"

	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// UserRepository reads and writes the Users table.
type UserRepository struct {
	client *store.Client
	table  string
}

// NewUserRepository creates a repository over the given table.
func NewUserRepository(client *store.Client, table string) *UserRepository {
	return &UserRepository{client: client, table: table}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	rec, err := r.client.First(ctx, r.table, store.ListOptions{
		Filter: store.NormalizedEquals(fieldEmail, email),
	})
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return userFromRecord(rec), nil
}

func (r *UserRepository) FindByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	rec, err := r.client.First(ctx, r.table, store.ListOptions{
		Filter: store.Equals(fieldToken, token),
	})
	if err != nil {
		return nil, fmt.Errorf("finding user by token: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return userFromRecord(rec), nil
}

func (r *UserRepository) FindAllByEmail(ctx context.Context, email string) ([]model.User, error) {
	records, err := r.client.ListAll(ctx, r.table, store.ListOptions{
		Filter: store.NormalizedEquals(fieldEmail, email),
	})
	if err != nil {
		return nil, fmt.Errorf("listing users by email: %w", err)
	}
	users := make([]model.User, 0, len(records))
	for i := range records {
		users = append(users, *userFromRecord(&records[i]))
	}
	// Oldest first, so dedup keeps the original account.
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, email string) (*model.User, error) {
	rec, err := r.client.CreateRecord(ctx, r.table, store.Fields{
		fieldEmail: email,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return userFromRecord(rec), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	return r.patch(ctx, id, profileFields(update))
}

func (r *UserRepository) SetToken(ctx context.Context, id, token string) (*model.User, error) {
	return r.patch(ctx, id, store.Fields{fieldToken: token})
}

func (r *UserRepository) SetReferralCode(ctx context.Context, id, code string) (*model.User, error) {
	return r.patch(ctx, id, store.Fields{fieldReferralCode: code})
}

func (r *UserRepository) SetOnboarded(ctx context.Context, id string) (*model.User, error) {
	return r.patch(ctx, id, store.Fields{fieldHasOnboarded: true})
}

func (r *UserRepository) SetSlackID(ctx context.Context, id, slackID string) (*model.User, error) {
	return r.patch(ctx, id, store.Fields{fieldSlackID: slackID})
}

func (r *UserRepository) patch(ctx context.Context, id string, fields store.Fields) (*model.User, error) {
	rec, err := r.client.UpdateRecord(ctx, r.table, id, fields)
	if err != nil {
		return nil, fmt.Errorf("updating user %s: %w", id, err)
	}
	return userFromRecord(rec), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.DeleteRecord(ctx, r.table, id); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	return nil
}

func (r *UserRepository) ReferralCodeTaken(ctx context.Context, code string) (bool, error) {
	rec, err := r.client.First(ctx, r.table, store.ListOptions{
		Filter: store.Equals(fieldReferralCode, code),
	})
	if err != nil {
		return false, fmt.Errorf("checking referral code: %w", err)
	}
	return rec != nil, nil
}

// profileFields builds a store field patch from a profile update,
// touching only the fields the caller set.
func profileFields(update model.ProfileUpdate) store.Fields {
	fields := store.Fields{}
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set(fieldFirstName, update.FirstName)
	set(fieldLastName, update.LastName)
	set(fieldBirthday, update.Birthday)
	set(fieldGithubUsername, update.GithubUsername)
	set(fieldStreet1, update.Street1)
	set(fieldStreet2, update.Street2)
	set(fieldCity, update.City)
	set(fieldState, update.State)
	set(fieldZipcode, update.Zipcode)
	set(fieldCountry, update.Country)
	return fields
}

func userFromRecord(rec *store.Record) *model.User {
	f := rec.Fields
	return &model.User{
		ID:             rec.ID,
		Email:          f.String(fieldEmail),
		Token:          f.String(fieldToken),
		SlackID:        f.String(fieldSlackID),
		GithubUsername: f.String(fieldGithubUsername),
		FirstName:      f.String(fieldFirstName),
		LastName:       f.String(fieldLastName),
		Birthday:       f.String(fieldBirthday),
		Address: model.Address{
			Street1: f.String(fieldStreet1),
			Street2: f.String(fieldStreet2),
			City:    f.String(fieldCity),
			State:   f.String(fieldState),
			Zipcode: f.String(fieldZipcode),
			Country: f.String(fieldCountry),
		},
		ReferralCode: f.String(fieldReferralCode),
		HasOnboarded: f.Bool(fieldHasOnboarded),
		CreatedAt:    rec.CreatedTime,
	}
}

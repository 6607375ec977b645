// Package repository defines the persistence interfaces the services
// depend on. The only production implementation sits on the hosted
// record store (see the airtable subpackage); tests substitute in-memory
// fakes.
package repository

import (
	"context"

	"github.com/sakif/jamstand/internal/model"
)

// UserRepository works with the Users table.
type UserRepository interface {
	// FindByEmail matches against the normalized email and returns nil
	// when no user exists.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByToken returns nil when no user holds the token.
	FindByToken(ctx context.Context, token string) (*model.User, error)
	// FindAllByEmail returns every record with the email, oldest first.
	// More than one means a signup race left duplicates behind.
	FindAllByEmail(ctx context.Context, email string) ([]model.User, error)
	Create(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile patches only the fields the update sets.
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)
	SetToken(ctx context.Context, id, token string) (*model.User, error)
	SetReferralCode(ctx context.Context, id, code string) (*model.User, error)
	SetOnboarded(ctx context.Context, id string) (*model.User, error)
	SetSlackID(ctx context.Context, id, slackID string) (*model.User, error)
	Delete(ctx context.Context, id string) error
	// ReferralCodeTaken reports whether any user already holds code.
	ReferralCodeTaken(ctx context.Context, code string) (bool, error)
}

// OTPRepository works with the OTP table.
type OTPRepository interface {
	Create(ctx context.Context, email, code, token string) error
	// LatestValid returns the most recent code for email created within
	// the validity window, or nil.
	LatestValid(ctx context.Context, email string, windowMinutes int) (*model.OneTimeCode, error)
}

// GameRepository works with the Games table.
type GameRepository interface {
	GetByID(ctx context.Context, id string) (*model.Game, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Game, error)
	FindByName(ctx context.Context, name string) (*model.Game, error)
	Create(ctx context.Context, game *model.Game) (*model.Game, error)
	Update(ctx context.Context, id string, update model.GameUpdate) (*model.Game, error)
	Delete(ctx context.Context, id string) error
	// AttachThumbnail uploads image bytes and leaves the thumbnail field
	// holding exactly the new attachment.
	AttachThumbnail(ctx context.Context, id string, up model.AttachmentUpload) (*model.Game, error)
	// FetchPosts resolves a game's linked posts.
	FetchPosts(ctx context.Context, postIDs []string) ([]model.Post, error)
}

// PostRepository works with the Posts table.
type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// ListAll returns the newest posts first, at most limit of them.
	ListAll(ctx context.Context, limit int) ([]model.Post, error)
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	// AddAttachment uploads one file to the post's attachments field.
	AddAttachment(ctx context.Context, postID string, up model.AttachmentUpload) error
	Delete(ctx context.Context, id string) error
	// FetchGames resolves the game records referenced by a feed page.
	FetchGames(ctx context.Context, gameIDs []string) (map[string]model.Game, error)
	// FetchUsers resolves game owners for slack id display.
	FetchUsers(ctx context.Context, userIDs []string) (map[string]model.User, error)
}

// RSVPRepository works with the RSVP table.
type RSVPRepository interface {
	// FindByUserAndEvent returns nil when the user has not RSVPed.
	FindByUserAndEvent(ctx context.Context, userID, event string) (*model.RSVP, error)
	ListByUser(ctx context.Context, userID string) ([]model.RSVP, error)
	Create(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error)
}

// PlayRepository works with the Plays table.
type PlayRepository interface {
	Create(ctx context.Context, play *model.Play) (*model.Play, error)
}

// HistoryRepository works with the submission history table.
type HistoryRepository interface {
	// CreateSubmission links a user, a game and its code URL in a new
	// history row and returns the row's record id.
	CreateSubmission(ctx context.Context, userID, gameID, codeURL string) (string, error)
}

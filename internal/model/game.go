package model

import "time"

// Game is a jam entry. The Owner link is the load-bearing field: every
// mutation on a game (or its posts) must verify the caller is among the
// linked owners before writing.
type Game struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	ThumbnailURL      string    `json:"thumbnailUrl"`
	GitHubURL         string    `json:"GitHubURL"`
	HackatimeProjects string    `json:"HackatimeProjects"` // CSV of project names
	OwnerIDs          []string  `json:"-"`
	PostIDs           []string  `json:"-"`
	Posts             []Post    `json:"posts"`
	CreatedAt         time.Time `json:"-"`
}

// OwnedBy reports whether userID is among the game's linked owners.
func (g *Game) OwnedBy(userID string) bool {
	for _, id := range g.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// GameUpdate is the allowlisted set of fields updateGame may change.
// Nil means "leave unchanged".
type GameUpdate struct {
	Name              *string
	Description       *string
	GitHubURL         *string
	HackatimeProjects *string
	ThumbnailURL      *string // external URL; the store re-hosts it
}

// Empty reports whether the update would change nothing.
func (u GameUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.GitHubURL == nil &&
		u.HackatimeProjects == nil && u.ThumbnailURL == nil
}

// AttachmentUpload carries base64-encoded bytes for the record store's
// content upload endpoint. Capped at 5MB decoded.
type AttachmentUpload struct {
	FileBase64  string `json:"fileBase64"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
}

// Valid reports whether all three required parts are present.
func (a AttachmentUpload) Valid() bool {
	return a.FileBase64 != "" && a.ContentType != "" && a.Filename != ""
}

package model

import "time"

// RSVP records that a user signed up for an event. At most one per
// (user, event) pair, enforced by a read-then-write check, so 409 on
// duplicates is a best effort, not a store-level constraint.
type RSVP struct {
	RecordID string `json:"recordId"`
	RSVPID   string `json:"rsvpId"`
	UserID   string `json:"userId,omitempty"`
	Event    string `json:"event"`
}

// Play is an append-only record of a player starting a game.
type Play struct {
	RecordID string `json:"recordId"`
	PlayID   string `json:"playId"`
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// OneTimeCode is a login code emailed to the user, paired with the token
// that verification will hand back. Codes are never deleted; validity is
// purely "most recent for the email, within the window".
type OneTimeCode struct {
	ID        string
	Email     string
	Code      string
	Token     string
	CreatedAt time.Time
}

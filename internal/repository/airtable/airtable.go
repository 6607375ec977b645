// Package airtable implements the repository interfaces on the hosted
// record store. Each repository owns one table and does the field-name
// mapping between store columns and domain models; nothing above this
// package mentions a column name.
package airtable

import (
	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// Tables names the tables inside the base. Values come from config so a
// staging base with renamed tables still works.
type Tables struct {
	Users   string
	OTP     string
	Games   string
	Posts   string
	RSVP    string
	Plays   string
	History string
}

// DefaultTables matches the production base.
func DefaultTables() Tables {
	return Tables{
		Users:   "Users",
		OTP:     "OTP",
		Games:   "Games",
		Posts:   "Posts",
		RSVP:    "RSVP",
		Plays:   "Plays",
		History: "YSWS Record History",
	}
}

// Users table columns.
const (
	fieldEmail          = "Email"
	fieldToken          = "token"
	fieldFirstName      = "First Name"
	fieldLastName       = "Last Name"
	fieldBirthday       = "Birthday"
	fieldSlackID        = "slack id"
	fieldGithubUsername = "github username"
	fieldStreet1        = "street address"
	fieldStreet2        = "street address #2"
	fieldCity           = "city"
	fieldState          = "state"
	fieldZipcode        = "zipcode"
	fieldCountry        = "country"
	fieldReferralCode   = "Referral Code"
	fieldHasOnboarded   = "hasOnboarded"
)

// OTP table columns.
const (
	fieldOTPEmail = "Email"
	fieldOTPCode  = "OTP"
	fieldOTPToken = "Token-generated"
)

// Games table columns.
const (
	fieldGameName      = "Name"
	fieldGameDesc      = "Description"
	fieldGameThumbnail = "Thumbnail"
	fieldGameGithub    = "Github URL"
	fieldGameHackatime = "Hackatime Projects"
	fieldGameOwner     = "Owner"
	fieldGamePosts     = "Posts"
)

// Posts table columns. "Attachements" is misspelled in the base and in
// every client that reads the feed, so it stays misspelled here.
const (
	fieldPostContent     = "Content"
	fieldPostGame        = "Game"
	fieldPostPlayLink    = "PlayLink"
	fieldPostAttachments = "Attachements"
	fieldPostID          = "PostID"
	fieldPostCreatedAt   = "Created At"
)

// RSVP table columns.
const (
	fieldRSVPID    = "RSVPId"
	fieldRSVPUser  = "User"
	fieldRSVPEvent = "Event"
)

// Plays table columns.
const (
	fieldPlayID     = "PlayID"
	fieldPlayGame   = "Game"
	fieldPlayPlayer = "Player"
)

// Record history table columns.
const (
	fieldHistoryCodeURL = "Code URL"
	fieldHistoryGame    = "Game"
	fieldHistoryUser    = "User"
)

func attachmentsFromField(raw []any) []model.Attachment {
	if len(raw) == 0 {
		return nil
	}
	atts := make([]model.Attachment, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		att := model.Attachment{}
		att.ID, _ = m["id"].(string)
		att.URL, _ = m["url"].(string)
		att.Type, _ = m["type"].(string)
		att.Filename, _ = m["filename"].(string)
		if size, ok := m["size"].(float64); ok {
			att.Size = int64(size)
		}
		atts = append(atts, att)
	}
	return atts
}

func firstAttachmentURL(f store.Fields, key string) string {
	atts := attachmentsFromField(f.List(key))
	if len(atts) == 0 {
		return ""
	}
	return atts[0].URL
}

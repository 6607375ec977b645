// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account in the record store's Users table.
//
// Identity is email-based: a row is created on the first login attempt for a
// new address, and the opaque bearer token is regenerated on every login.
// There is no password; possession of the token is the whole credential.
//
// All profile fields are plain strings with "" as the zero value. The record
// store omits empty cells from its JSON, so a nullable pointer would buy
// nothing but nil checks.
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Token          string  `json:"-"` // never serialized in profile responses
	SlackID        string  `json:"slackId"`
	GithubUsername string  `json:"githubUsername"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Birthday       string  `json:"birthday"` // YYYY-MM-DD, or ""
	Address        Address `json:"address"`
	ReferralCode   string  `json:"referralCode"`
	HasOnboarded   bool    `json:"hasOnboarded"`

	// RSVPIDs holds record ids of RSVPs linked directly on the user row.
	RSVPIDs   []string  `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Address is the mailing address collected during onboarding (for stickers).
type Address struct {
	Street1 string `json:"street1"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

// ProfileUpdate is the allowlist of user fields a profile PATCH may touch.
// A nil pointer means "leave unchanged"; pointing at "" clears the field.
// Email, token and referral code are deliberately absent; they are managed
// by the login flow, never by profile edits.
// The slack id is also absent: it is only ever written by the OAuth
// callback, after Slack itself has vouched for the identity.
type ProfileUpdate struct {
	GithubUsername *string `json:"githubUsername"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Birthday       *string `json:"birthday"`
	Street1        *string `json:"street1"`
	Street2        *string `json:"street2"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	Zipcode        *string `json:"zipcode"`
	Country        *string `json:"country"`
}

// Empty reports whether the update would change nothing.
func (p ProfileUpdate) Empty() bool {
	return p.GithubUsername == nil && p.FirstName == nil && p.LastName == nil &&
		p.Birthday == nil && p.Street1 == nil &&
		p.Street2 == nil && p.City == nil && p.State == nil &&
		p.Zipcode == nil && p.Country == nil
}

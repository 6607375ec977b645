// Package auth holds credential generation, session token middleware, and
// the Slack OAuth flow.
//
// Sessions are deliberately simple: a user's long-lived bearer token is a
// random 120-character string stored on their record. There is no signing
// and no expiry; presenting the token IS the session. Revocation means
// rotating the stored value.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// SessionTokenLength is the length of a user's bearer token.
	SessionTokenLength = 120
	// PublicIDLength is the length of RSVP and play identifiers that
	// leak into client-visible payloads.
	PublicIDLength = 16
)

// RandomString returns n characters drawn from the alphanumeric set using
// crypto/rand. It panics only if the OS entropy source is broken.
func RandomString(n int) string {
	max := big.NewInt(int64(len(alphanumeric)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("auth: reading random source: %v", err))
		}
		buf[i] = alphanumeric[idx.Int64()]
	}
	return string(buf)
}

// NewSessionToken returns a fresh bearer token.
func NewSessionToken() string {
	return RandomString(SessionTokenLength)
}

// NewPublicID returns a fresh RSVP/play identifier.
func NewPublicID() string {
	return RandomString(PublicIDLength)
}

// NewOTPCode returns a 6-digit one-time code. The range excludes values
// below 100000 so the code never needs left-padding.
func NewOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(fmt.Sprintf("auth: reading random source: %v", err))
	}
	return fmt.Sprintf("%d", n.Int64()+100000)
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// stateTTL bounds how long an OAuth round trip may take. Ten minutes is
// generous for a popup window.
const stateTTL = 10 * time.Minute

// StateSigner mints and checks the state parameter for the Slack OAuth
// flow. The state is a short-lived signed token carrying the id of the
// user who opened the popup, so the callback can bind the Slack identity
// to the right account without any server-side session storage.
type StateSigner struct {
	secret []byte
}

// NewStateSigner creates a signer with the given HMAC secret.
func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret)}
}

type stateClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Sign returns a state token bound to userID.
func (s *StateSigner) Sign(userID string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the state token's signature and expiry and returns the
// user id it was bound to.
func (s *StateSigner) Verify(state string) (string, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing state: %w", err)
	}
	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid state token")
	}
	return claims.UserID, nil
}

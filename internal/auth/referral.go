package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// referralCodePattern matches four capitalized words run together, with
// an optional two-digit suffix from collision fallback.
var referralCodePattern = regexp.MustCompile(`^([A-Z][a-z]+){4}(\d{2})?$`)

// referralAttempts bounds how many word combinations we try before
// falling back to a numeric suffix.
const referralAttempts = 10

// ValidReferralCode reports whether s has the shape of a generated code.
func ValidReferralCode(s string) bool {
	return referralCodePattern.MatchString(s)
}

// NewReferralCode generates a code of four random words that taken does
// not already claim. If every attempt collides, the last candidate gets a
// random two-digit suffix, which taken is consulted on once more; at that
// point we accept it regardless, since the combined space makes a double
// collision vanishingly unlikely.
func NewReferralCode(taken func(code string) bool) string {
	var candidate string
	for i := 0; i < referralAttempts; i++ {
		candidate = randomWordCode()
		if !taken(candidate) {
			return candidate
		}
	}
	suffixed := fmt.Sprintf("%s%02d", candidate, randomIndex(100))
	if !taken(suffixed) {
		return suffixed
	}
	return fmt.Sprintf("%s%02d", randomWordCode(), randomIndex(100))
}

func randomWordCode() string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		b.WriteString(referralWords[randomIndex(len(referralWords))])
	}
	return b.String()
}

func randomIndex(n int) int {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("auth: reading random source: %v", err))
	}
	return int(idx.Int64())
}

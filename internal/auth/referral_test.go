package auth

import "testing"

func TestNewReferralCodeShape(t *testing.T) {
	code := NewReferralCode(func(string) bool { return false })
	if !ValidReferralCode(code) {
		t.Errorf("generated code %q fails validation", code)
	}
}

func TestNewReferralCodeAvoidsTaken(t *testing.T) {
	taken := map[string]bool{}
	first := NewReferralCode(func(c string) bool { return taken[c] })
	taken[first] = true

	second := NewReferralCode(func(c string) bool { return taken[c] })
	if second == first {
		t.Errorf("collision not avoided: %q", second)
	}
}

func TestNewReferralCodeSuffixFallback(t *testing.T) {
	// Every plain word combination is claimed, forcing the numeric
	// suffix path.
	code := NewReferralCode(func(c string) bool {
		return ValidReferralCode(c) && len(c) > 0 && c[len(c)-1] >= 'a' && c[len(c)-1] <= 'z'
	})
	if !ValidReferralCode(code) {
		t.Fatalf("fallback code %q fails validation", code)
	}
	last := code[len(code)-1]
	if last < '0' || last > '9' {
		t.Errorf("code %q lacks numeric suffix", code)
	}
}

func TestValidReferralCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"four words", "AppleBerryCloudDawn", true},
		{"four words with suffix", "AppleBerryCloudDawn07", true},
		{"three words", "AppleBerryCloud", false},
		{"lowercase start", "appleBerryCloudDawn", false},
		{"one digit suffix", "AppleBerryCloudDawn7", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidReferralCode(tt.code); got != tt.want {
				t.Errorf("ValidReferralCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

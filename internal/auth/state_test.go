package auth

import "testing"

func TestStateRoundTrip(t *testing.T) {
	signer := NewStateSigner("test-secret")

	state, err := signer.Sign("recUser1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	userID, err := signer.Verify(state)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "recUser1" {
		t.Errorf("userID = %q, want recUser1", userID)
	}
}

func TestStateRejectsTampering(t *testing.T) {
	signer := NewStateSigner("test-secret")
	state, err := signer.Sign("recUser1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := signer.Verify(state + "x"); err == nil {
		t.Error("tampered state accepted")
	}
}

func TestStateRejectsWrongSecret(t *testing.T) {
	state, err := NewStateSigner("secret-a").Sign("recUser1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := NewStateSigner("secret-b").Verify(state); err == nil {
		t.Error("state signed with another secret accepted")
	}
}

func TestStateRejectsGarbage(t *testing.T) {
	if _, err := NewStateSigner("s").Verify("not-a-token"); err == nil {
		t.Error("garbage state accepted")
	}
}

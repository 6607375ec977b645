package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/jamstand/internal/apperror"
)

func TestSyncSubmit(t *testing.T) {
	repo := &fakeHistoryRepo{}
	svc := NewSyncService(repo, testLogger())

	recordID, err := svc.Submit(context.Background(), owner(), "recG001", "  https://github.com/kid/moon-lander  ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if recordID == "" {
		t.Error("expected a record id")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}
	row := repo.rows[0]
	if row.userID != owner().ID || row.gameID != "recG001" || row.codeURL != "https://github.com/kid/moon-lander" {
		t.Errorf("row = %+v", row)
	}

	// Resubmitting appends another row.
	if _, err := svc.Submit(context.Background(), owner(), "recG001", "https://github.com/kid/moon-lander"); err != nil {
		t.Errorf("resubmit: %v", err)
	}
	if len(repo.rows) != 2 {
		t.Errorf("rows after resubmit = %d, want 2", len(repo.rows))
	}
}

func TestSyncSubmitValidation(t *testing.T) {
	svc := NewSyncService(&fakeHistoryRepo{}, testLogger())

	if _, err := svc.Submit(context.Background(), owner(), "recG001", "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank url = %v, want validation error", err)
	}
	if _, err := svc.Submit(context.Background(), owner(), "", "https://github.com/kid/moon-lander"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank game = %v, want validation error", err)
	}
}

func TestSyncSubmitStoreFailure(t *testing.T) {
	svc := NewSyncService(&fakeHistoryRepo{fail: true}, testLogger())

	_, err := svc.Submit(context.Background(), owner(), "recG001", "https://github.com/kid/moon-lander")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("store failure = %v, want upstream error", err)
	}
}

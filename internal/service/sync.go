package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/repository"
)

// SyncService copies finished submissions into the archival history
// table that the review pipeline reads from.
type SyncService struct {
	history repository.HistoryRepository
	logger  *slog.Logger
}

func NewSyncService(history repository.HistoryRepository, logger *slog.Logger) *SyncService {
	return &SyncService{history: history, logger: logger}
}

// Submit records a history row linking the caller, the game and its
// code URL. Rows are append-only; resubmitting creates another row.
func (s *SyncService) Submit(ctx context.Context, user *model.User, gameID, codeURL string) (string, error) {
	codeURL = strings.TrimSpace(codeURL)
	if codeURL == "" {
		return "", apperror.ValidationFailed("githubUrl", "Missing required field: githubUrl")
	}
	if gameID == "" {
		return "", apperror.ValidationFailed("gameId", "Missing required field: gameId")
	}

	recordID, err := s.history.CreateSubmission(ctx, user.ID, gameID, codeURL)
	if err != nil {
		return "", apperror.Upstream("recording submission", err)
	}
	s.logger.Info("submission recorded", "record_id", recordID, "game_id", gameID, "user_id", user.ID)
	return recordID, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/repository"
)

// PlayService records play events against games, resolved by name since
// the play page only knows the game's display name.
type PlayService struct {
	plays  repository.PlayRepository
	games  repository.GameRepository
	logger *slog.Logger
}

func NewPlayService(plays repository.PlayRepository, games repository.GameRepository, logger *slog.Logger) *PlayService {
	return &PlayService{plays: plays, games: games, logger: logger}
}

// Create appends a play for the named game. The log is append-only and
// duplicates are fine; analytics dedupes downstream.
func (s *PlayService) Create(ctx context.Context, user *model.User, gameName string) (*model.Play, error) {
	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		return nil, apperror.ValidationFailed("gameName", "A game name is required")
	}

	game, err := s.games.FindByName(ctx, gameName)
	if err != nil {
		return nil, apperror.Upstream("finding game", err)
	}
	if game == nil {
		return nil, apperror.NotFound("game", gameName)
	}

	play, err := s.plays.Create(ctx, &model.Play{
		PlayID:   auth.NewPublicID(),
		GameID:   game.ID,
		PlayerID: user.ID,
	})
	if err != nil {
		return nil, apperror.Upstream("recording play", err)
	}
	s.logger.Info("play recorded", "play_id", play.PlayID, "game_id", game.ID, "user_id", user.ID)
	return play, nil
}

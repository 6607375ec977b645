package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/jamstand/internal/airtable"
	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/repository"
)

const (
	MaxGameNameLength        = 100
	MaxGameDescriptionLength = 2000
)

// githubRepoPattern accepts repository home pages only, not deep links.
var githubRepoPattern = regexp.MustCompile(`^https://github\.com/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+/?$`)

// GameService handles the games a user owns: creation, edits, deletion,
// and thumbnail upload. Every mutation re-reads the record and checks
// ownership before touching it.
type GameService struct {
	games  repository.GameRepository
	logger *slog.Logger
}

func NewGameService(games repository.GameRepository, logger *slog.Logger) *GameService {
	return &GameService{games: games, logger: logger}
}

// ListMine returns the caller's games with their devlog posts resolved.
func (s *GameService) ListMine(ctx context.Context, user *model.User) ([]model.Game, error) {
	games, err := s.games.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, apperror.Upstream("listing games", err)
	}

	// One batched fetch for all posts across the user's games, then
	// distribute; per-game round trips would multiply store calls.
	var allIDs []string
	for i := range games {
		allIDs = append(allIDs, games[i].PostIDs...)
	}
	if len(allIDs) == 0 {
		for i := range games {
			games[i].Posts = []model.Post{}
		}
		return games, nil
	}

	posts, err := s.games.FetchPosts(ctx, allIDs)
	if err != nil {
		return nil, apperror.Upstream("resolving posts", err)
	}
	byID := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	for i := range games {
		games[i].Posts = []model.Post{}
		for _, id := range games[i].PostIDs {
			if p, ok := byID[id]; ok {
				games[i].Posts = append(games[i].Posts, p)
			}
		}
	}
	return games, nil
}

// Create makes a new game owned by the caller.
func (s *GameService) Create(ctx context.Context, user *model.User, name, description string) (*model.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Game name is required")
	}
	if len(name) > MaxGameNameLength {
		return nil, apperror.ValidationFailed("name", "Game name is too long")
	}
	if len(description) > MaxGameDescriptionLength {
		return nil, apperror.ValidationFailed("description", "Description is too long")
	}

	game, err := s.games.Create(ctx, &model.Game{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerIDs:    []string{user.ID},
	})
	if err != nil {
		return nil, apperror.Upstream("creating game", err)
	}
	s.logger.Info("game created", "game_id", game.ID, "user_id", user.ID)
	return game, nil
}

// Update patches an owned game.
func (s *GameService) Update(ctx context.Context, user *model.User, gameID string, update model.GameUpdate) (*model.Game, error) {
	if update.Empty() {
		return nil, apperror.ValidationFailed("game", "No editable fields in request")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, apperror.ValidationFailed("name", "Game name cannot be empty")
	}
	if update.GitHubURL != nil && *update.GitHubURL != "" && !githubRepoPattern.MatchString(*update.GitHubURL) {
		return nil, apperror.ValidationFailed("githubUrl", "GitHub URL must look like https://github.com/user/repo")
	}
	if _, err := s.owned(ctx, user, gameID); err != nil {
		return nil, err
	}

	game, err := s.games.Update(ctx, gameID, update)
	if err != nil {
		return nil, apperror.Upstream("updating game", err)
	}
	return game, nil
}

// Delete removes an owned game.
func (s *GameService) Delete(ctx context.Context, user *model.User, gameID string) error {
	if _, err := s.owned(ctx, user, gameID); err != nil {
		return err
	}
	if err := s.games.Delete(ctx, gameID); err != nil {
		return apperror.Upstream("deleting game", err)
	}
	s.logger.Info("game deleted", "game_id", gameID, "user_id", user.ID)
	return nil
}

// UpdateThumbnail replaces an owned game's thumbnail.
func (s *GameService) UpdateThumbnail(ctx context.Context, user *model.User, gameID string, up model.AttachmentUpload) (*model.Game, error) {
	if !up.Valid() {
		return nil, apperror.ValidationFailed("thumbnail", "fileBase64, contentType and filename are required")
	}
	if base64.StdEncoding.DecodedLen(len(up.FileBase64)) > airtable.MaxUploadBytes {
		return nil, apperror.ValidationFailed("thumbnail", "Image exceeds the 5MB limit")
	}
	if _, err := s.owned(ctx, user, gameID); err != nil {
		return nil, err
	}

	game, err := s.games.AttachThumbnail(ctx, gameID, up)
	if err != nil {
		return nil, apperror.Upstream("updating thumbnail", err)
	}
	return game, nil
}

// Get returns an owned game. Handlers that need to show a game before
// mutating it go through here so the ownership rule stays in one place.
func (s *GameService) Get(ctx context.Context, user *model.User, gameID string) (*model.Game, error) {
	return s.owned(ctx, user, gameID)
}

func (s *GameService) owned(ctx context.Context, user *model.User, gameID string) (*model.Game, error) {
	if gameID == "" {
		return nil, apperror.ValidationFailed("gameId", "A game id is required")
	}
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, apperror.Upstream("fetching game", err)
	}
	if game == nil {
		return nil, apperror.NotFound("game", gameID)
	}
	if !game.OwnedBy(user.ID) {
		return nil, apperror.Forbidden("Forbidden: not the owner of this game")
	}
	return game, nil
}

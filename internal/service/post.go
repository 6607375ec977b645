package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/jamstand/internal/airtable"
	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/repository"
)

const (
	MaxPostContentLength  = 5000
	MaxPostPlayLinkLength = 500

	// DefaultFeedLimit / MaxFeedLimit bound GetAllPosts pagination.
	DefaultFeedLimit = 100
	MaxFeedLimit     = 1000
)

// PostService handles devlog posts and the global feed.
type PostService struct {
	posts  repository.PostRepository
	games  repository.GameRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, games repository.GameRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, games: games, logger: logger}
}

// Feed returns up to limit posts joined with their game's name and
// thumbnail and the owner's slack id, newest first. Three batched reads
// total, no matter how long the feed is.
func (s *PostService) Feed(ctx context.Context, limit int) ([]model.FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	posts, err := s.posts.ListAll(ctx, limit)
	if err != nil {
		return nil, apperror.Upstream("listing posts", err)
	}

	gameIDs := make([]string, 0, len(posts))
	seen := map[string]bool{}
	for _, p := range posts {
		if p.GameID != "" && !seen[p.GameID] {
			seen[p.GameID] = true
			gameIDs = append(gameIDs, p.GameID)
		}
	}
	games, err := s.posts.FetchGames(ctx, gameIDs)
	if err != nil {
		return nil, apperror.Upstream("resolving feed games", err)
	}

	ownerIDs := make([]string, 0, len(games))
	seenOwner := map[string]bool{}
	for _, g := range games {
		for _, id := range g.OwnerIDs {
			if !seenOwner[id] {
				seenOwner[id] = true
				ownerIDs = append(ownerIDs, id)
			}
		}
	}
	owners, err := s.posts.FetchUsers(ctx, ownerIDs)
	if err != nil {
		return nil, apperror.Upstream("resolving feed owners", err)
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })

	feed := make([]model.FeedItem, 0, len(posts))
	for _, p := range posts {
		item := model.FeedItem{
			CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
			PlayLink:    p.PlayLink,
			Attachments: p.Attachments,
			Content:     p.Content,
			PostID:      p.PostID,
		}
		if item.Attachments == nil {
			item.Attachments = []model.Attachment{}
		}
		if g, ok := games[p.GameID]; ok {
			item.GameName = g.Name
			item.GameThumbnail = g.ThumbnailURL
			if len(g.OwnerIDs) > 0 {
				if owner, ok := owners[g.OwnerIDs[0]]; ok {
					item.SlackID = owner.SlackID
				}
			}
		}
		feed = append(feed, item)
	}
	return feed, nil
}

// Create adds a post to a game the caller owns. Attachments upload
// best-effort after the post exists; a failed upload is logged and the
// post stands without it.
func (s *PostService) Create(ctx context.Context, user *model.User, gameID, content, playLink string, attachments []model.AttachmentUpload) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Post content is required")
	}
	if len(content) > MaxPostContentLength {
		return nil, apperror.ValidationFailed("content", "Post content is too long")
	}
	playLink = strings.TrimSpace(playLink)
	if playLink != "" {
		if !strings.HasPrefix(playLink, "https://") {
			return nil, apperror.ValidationFailed("playLink", "Play link must be an https URL")
		}
		if len(playLink) > MaxPostPlayLinkLength {
			return nil, apperror.ValidationFailed("playLink", "Play link is too long")
		}
	}
	if err := s.ownedGame(ctx, user, gameID); err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, &model.Post{
		PostID:   auth.NewPublicID(),
		Content:  content,
		GameID:   gameID,
		PlayLink: playLink,
	})
	if err != nil {
		return nil, apperror.Upstream("creating post", err)
	}

	uploaded := false
	for _, up := range attachments {
		if !up.Valid() {
			continue
		}
		if base64.StdEncoding.DecodedLen(len(up.FileBase64)) > airtable.MaxUploadBytes {
			s.logger.Warn("skipping oversized post attachment", "post_id", post.PostID, "filename", up.Filename)
			continue
		}
		if err := s.posts.AddAttachment(ctx, post.ID, up); err != nil {
			s.logger.Error("post attachment upload failed", "post_id", post.PostID, "error", err)
			continue
		}
		uploaded = true
	}
	if uploaded {
		// Re-read so the response carries the stored attachment URLs.
		if fresh, err := s.posts.GetByID(ctx, post.ID); err == nil && fresh != nil {
			post = fresh
		}
	}

	s.logger.Info("post created", "post_id", post.PostID, "game_id", gameID, "user_id", user.ID)
	return post, nil
}

// Delete removes a post if the caller owns the game it belongs to.
func (s *PostService) Delete(ctx context.Context, user *model.User, postRecordID string) error {
	if postRecordID == "" {
		return apperror.ValidationFailed("postId", "A post id is required")
	}
	post, err := s.posts.GetByID(ctx, postRecordID)
	if err != nil {
		return apperror.Upstream("fetching post", err)
	}
	if post == nil {
		return apperror.NotFound("post", postRecordID)
	}
	if err := s.ownedGame(ctx, user, post.GameID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postRecordID); err != nil {
		return apperror.Upstream("deleting post", err)
	}
	s.logger.Info("post deleted", "post_id", postRecordID, "user_id", user.ID)
	return nil
}

func (s *PostService) ownedGame(ctx context.Context, user *model.User, gameID string) error {
	if gameID == "" {
		return apperror.ValidationFailed("gameId", "A game id is required")
	}
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return apperror.Upstream("fetching game", err)
	}
	if game == nil {
		return apperror.NotFound("game", gameID)
	}
	if !game.OwnedBy(user.ID) {
		return apperror.Forbidden("Forbidden: not the owner of this game")
	}
	return nil
}

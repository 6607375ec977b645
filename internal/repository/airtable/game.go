package airtable

import (
	"context"
	"fmt"

	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// GameRepository reads and writes the Games table.
type GameRepository struct {
	client     *store.Client
	table      string
	postsTable string
}

func NewGameRepository(client *store.Client, table, postsTable string) *GameRepository {
	return &GameRepository{client: client, table: table, postsTable: postsTable}
}

// FetchPosts resolves linked post records for a game listing.
func (r *GameRepository) FetchPosts(ctx context.Context, postIDs []string) ([]model.Post, error) {
	records, err := r.client.FetchByIDs(ctx, r.postsTable, postIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving posts: %w", err)
	}
	posts := make([]model.Post, 0, len(records))
	for i := range records {
		posts = append(posts, *postFromRecord(&records[i]))
	}
	return posts, nil
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	rec, err := r.client.GetRecord(ctx, r.table, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching game %s: %w", id, err)
	}
	return gameFromRecord(rec), nil
}

func (r *GameRepository) ListByOwner(ctx context.Context, userID string) ([]model.Game, error) {
	records, err := r.client.ListAll(ctx, r.table, store.ListOptions{
		Filter: store.ArrayJoinEquals(fieldGameOwner, userID),
	})
	if err != nil {
		return nil, fmt.Errorf("listing games for %s: %w", userID, err)
	}
	games := make([]model.Game, 0, len(records))
	for i := range records {
		games = append(games, *gameFromRecord(&records[i]))
	}
	return games, nil
}

func (r *GameRepository) FindByName(ctx context.Context, name string) (*model.Game, error) {
	rec, err := r.client.First(ctx, r.table, store.ListOptions{
		Filter: store.Equals(fieldGameName, name),
	})
	if err != nil {
		return nil, fmt.Errorf("finding game %q: %w", name, err)
	}
	if rec == nil {
		return nil, nil
	}
	return gameFromRecord(rec), nil
}

func (r *GameRepository) Create(ctx context.Context, game *model.Game) (*model.Game, error) {
	fields := store.Fields{
		fieldGameName:  game.Name,
		fieldGameOwner: game.OwnerIDs,
	}
	if game.Description != "" {
		fields[fieldGameDesc] = game.Description
	}
	if game.GitHubURL != "" {
		fields[fieldGameGithub] = game.GitHubURL
	}
	if game.HackatimeProjects != "" {
		fields[fieldGameHackatime] = game.HackatimeProjects
	}
	rec, err := r.client.CreateRecord(ctx, r.table, fields)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	return gameFromRecord(rec), nil
}

func (r *GameRepository) Update(ctx context.Context, id string, update model.GameUpdate) (*model.Game, error) {
	fields := store.Fields{}
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set(fieldGameName, update.Name)
	set(fieldGameDesc, update.Description)
	set(fieldGameGithub, update.GitHubURL)
	set(fieldGameHackatime, update.HackatimeProjects)
	if update.ThumbnailURL != nil {
		// URL-sourced attachment; the store downloads and re-hosts it.
		fields[fieldGameThumbnail] = []map[string]any{{"url": *update.ThumbnailURL}}
	}

	rec, err := r.client.UpdateRecord(ctx, r.table, id, fields)
	if err != nil {
		return nil, fmt.Errorf("updating game %s: %w", id, err)
	}
	return gameFromRecord(rec), nil
}

func (r *GameRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.DeleteRecord(ctx, r.table, id); err != nil {
		return fmt.Errorf("deleting game %s: %w", id, err)
	}
	return nil
}

// AttachThumbnail uploads the image, then re-patches the thumbnail field
// down to just the new attachment so old thumbnails don't accumulate.
func (r *GameRepository) AttachThumbnail(ctx context.Context, id string, up model.AttachmentUpload) (*model.Game, error) {
	attID, err := r.client.UploadAttachment(ctx, id, fieldGameThumbnail, up.FileBase64, up.ContentType, up.Filename)
	if err != nil {
		return nil, fmt.Errorf("uploading thumbnail for %s: %w", id, err)
	}
	fields := store.Fields{
		fieldGameThumbnail: []map[string]any{{"id": attID}},
	}
	rec, err := r.client.UpdateRecord(ctx, r.table, id, fields)
	if err != nil {
		return nil, fmt.Errorf("normalizing thumbnail for %s: %w", id, err)
	}
	return gameFromRecord(rec), nil
}

func gameFromRecord(rec *store.Record) *model.Game {
	f := rec.Fields
	return &model.Game{
		ID:                rec.ID,
		Name:              f.String(fieldGameName),
		Description:       f.String(fieldGameDesc),
		ThumbnailURL:      firstAttachmentURL(f, fieldGameThumbnail),
		GitHubURL:         f.String(fieldGameGithub),
		HackatimeProjects: f.String(fieldGameHackatime),
		OwnerIDs:          f.LinkedIDs(fieldGameOwner),
		PostIDs:           f.LinkedIDs(fieldGamePosts),
		CreatedAt:         rec.CreatedTime,
	}
}

package airtable

import (
	"context"
	"fmt"

	"github.com/sakif/jamstand/internal/model"

	store "github.com/sakif/jamstand/internal/airtable"
)

// PostRepository reads and writes the Posts table and resolves the
// cross-table references a feed page needs.
type PostRepository struct {
	client     *store.Client
	table      string
	gamesTable string
	usersTable string
}

func NewPostRepository(client *store.Client, table, gamesTable, usersTable string) *PostRepository {
	return &PostRepository{client: client, table: table, gamesTable: gamesTable, usersTable: usersTable}
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	rec, err := r.client.GetRecord(ctx, r.table, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching post %s: %w", id, err)
	}
	return postFromRecord(rec), nil
}

func (r *PostRepository) ListAll(ctx context.Context, limit int) ([]model.Post, error) {
	records, err := r.client.ListAll(ctx, r.table, store.ListOptions{
		Sort:       []store.Sort{{Field: fieldPostCreatedAt, Direction: "desc"}},
		MaxRecords: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	posts := make([]model.Post, 0, len(records))
	for i := range records {
		posts = append(posts, *postFromRecord(&records[i]))
	}
	return posts, nil
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	fields := store.Fields{
		fieldPostContent: post.Content,
		fieldPostGame:    []string{post.GameID},
		fieldPostID:      post.PostID,
	}
	if post.PlayLink != "" {
		fields[fieldPostPlayLink] = post.PlayLink
	}
	rec, err := r.client.CreateRecord(ctx, r.table, fields)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return postFromRecord(rec), nil
}

// AddAttachment uploads one base64 file into the post's attachments
// field. Unlike thumbnails the field is not collapsed afterwards;
// attachments accumulate.
func (r *PostRepository) AddAttachment(ctx context.Context, postID string, up model.AttachmentUpload) error {
	_, err := r.client.UploadAttachment(ctx, postID, fieldPostAttachments, up.FileBase64, up.ContentType, up.Filename)
	if err != nil {
		return fmt.Errorf("uploading post attachment: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.DeleteRecord(ctx, r.table, id); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

func (r *PostRepository) FetchGames(ctx context.Context, gameIDs []string) (map[string]model.Game, error) {
	records, err := r.client.FetchByIDs(ctx, r.gamesTable, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving feed games: %w", err)
	}
	games := make(map[string]model.Game, len(records))
	for i := range records {
		games[records[i].ID] = *gameFromRecord(&records[i])
	}
	return games, nil
}

func (r *PostRepository) FetchUsers(ctx context.Context, userIDs []string) (map[string]model.User, error) {
	records, err := r.client.FetchByIDs(ctx, r.usersTable, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving feed owners: %w", err)
	}
	users := make(map[string]model.User, len(records))
	for i := range records {
		users[records[i].ID] = *userFromRecord(&records[i])
	}
	return users, nil
}

func postFromRecord(rec *store.Record) *model.Post {
	f := rec.Fields
	gameIDs := f.LinkedIDs(fieldPostGame)
	gameID := ""
	if len(gameIDs) > 0 {
		gameID = gameIDs[0]
	}
	return &model.Post{
		ID:          rec.ID,
		PostID:      f.String(fieldPostID),
		Content:     f.String(fieldPostContent),
		GameID:      gameID,
		PlayLink:    f.String(fieldPostPlayLink),
		Attachments: attachmentsFromField(f.List(fieldPostAttachments)),
		CreatedAt:   rec.CreatedTime,
	}
}

package model

import "time"

// Post is a devlog entry attached to a game.
type Post struct {
	ID          string       `json:"id"`
	PostID      string       `json:"postId"` // generated 16-char public id
	Content     string       `json:"content"`
	GameID      string       `json:"gameId,omitempty"`
	PlayLink    string       `json:"PlayLink"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Attachment is a file the record store hosts for a post or thumbnail.
type Attachment struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	ContentType string `json:"contentType,omitempty"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
}

// FeedItem is one row of the global posts feed: a post joined with its
// game's name/thumbnail and the owner's slack id. Field names mirror the
// store's column names because the frontend consumes them verbatim.
type FeedItem struct {
	CreatedAt     string       `json:"Created At"`
	PlayLink      string       `json:"PlayLink"`
	Attachments   []Attachment `json:"Attachements"`
	SlackID       string       `json:"slack id"`
	GameName      string       `json:"Game Name"`
	Content       string       `json:"Content"`
	PostID        string       `json:"PostID"`
	GameThumbnail string       `json:"GameThumbnail"`
}

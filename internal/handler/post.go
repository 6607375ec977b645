package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/service"
)

// PostHandler serves devlog posts and the global feed.
type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Feed handles GET /api/GetAllPosts. Public; no auth required. The
// limit query param caps the page, defaulting to 100 and never
// exceeding 1000.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	feed, err := h.posts.Feed(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if feed == nil {
		feed = []model.FeedItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": feed})
}

// Create handles POST /api/createPost.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		GameID      string                   `json:"gameId"`
		Content     string                   `json:"content"`
		PlayLink    string                   `json:"playLink"`
		Attachments []model.AttachmentUpload `json:"attachmentsUpload"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), user, req.GameID, req.Content, req.PlayLink, req.Attachments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "post": post})
}

// Delete handles POST /api/deletePost.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		PostID string `json:"postId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), user, req.PostID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

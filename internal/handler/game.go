package handler

import (
	"net/http"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/service"
)

// GameHandler serves game CRUD for the caller's own games.
type GameHandler struct {
	games *service.GameService
}

func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

// ListMine handles GET /api/GetMyGames.
func (h *GameHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	games, err := h.games.ListMine(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	if games == nil {
		games = []model.Game{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

// Create handles POST /api/CreateNewGame.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	game, err := h.games.Create(r.Context(), user, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// Update handles POST /api/updateGame. The thumbnail can arrive either
// as an external URL inside the update or as base64 bytes, which take
// precedence because they came from an explicit file picker.
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		GameID            string                  `json:"gameId"`
		Name              *string                 `json:"name"`
		Description       *string                 `json:"description"`
		GitHubURL         *string                 `json:"githubUrl"`
		HackatimeProjects *string                 `json:"hackatimeProjects"`
		ThumbnailURL      *string                 `json:"thumbnailUrl"`
		Thumbnail         *model.AttachmentUpload `json:"thumbnail"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Thumbnail != nil {
		game, err := h.games.UpdateThumbnail(r.Context(), user, req.GameID, *req.Thumbnail)
		if err != nil {
			writeError(w, err)
			return
		}
		// Field edits may ride along with a new thumbnail.
		update := model.GameUpdate{
			Name:              req.Name,
			Description:       req.Description,
			GitHubURL:         req.GitHubURL,
			HackatimeProjects: req.HackatimeProjects,
		}
		if !update.Empty() {
			game, err = h.games.Update(r.Context(), user, req.GameID, update)
			if err != nil {
				writeError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, game)
		return
	}

	game, err := h.games.Update(r.Context(), user, req.GameID, model.GameUpdate{
		Name:              req.Name,
		Description:       req.Description,
		GitHubURL:         req.GitHubURL,
		HackatimeProjects: req.HackatimeProjects,
		ThumbnailURL:      req.ThumbnailURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// Delete handles POST /api/deleteGame.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		GameID string `json:"gameId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.games.Delete(r.Context(), user, req.GameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Game deleted"})
}

package handler

import (
	"net/http"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/service"
)

// SyncHandler records submissions into the review history table.
type SyncHandler struct {
	sync *service.SyncService
}

func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// Submit handles POST /api/SyncUserWithYSWSDB.
func (h *SyncHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		GameID    string `json:"gameId"`
		GitHubURL string `json:"githubUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	recordID, err := h.sync.Submit(r.Context(), user, req.GameID, req.GitHubURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"message":  "Successfully created submission record",
		"recordId": recordID,
	})
}

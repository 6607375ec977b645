package handler

import (
	"net/http"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/service"
)

// RSVPHandler serves event signups and play tracking.
type RSVPHandler struct {
	rsvps *service.RSVPService
	plays *service.PlayService
}

func NewRSVPHandler(rsvps *service.RSVPService, plays *service.PlayService) *RSVPHandler {
	return &RSVPHandler{rsvps: rsvps, plays: plays}
}

// Create handles POST /api/CreateRSVP.
func (h *RSVPHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		Event string `json:"event"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.rsvps.Create(r.Context(), user, req.Event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rsvp": rsvp})
}

// List handles GET /api/GetRSVPs.
func (h *RSVPHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	rsvps, err := h.rsvps.List(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	if rsvps == nil {
		rsvps = []model.RSVP{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rsvps": rsvps})
}

// CreatePlay handles POST /api/CreatePlay.
func (h *RSVPHandler) CreatePlay(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		GameName string `json:"gameName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	play, err := h.plays.Create(r.Context(), user, req.GameName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "play": play})
}

package handler

import (
	"net/http"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/service"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	users *service.UserService
}

func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get handles GET /api/getMyProfile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.users.Profile(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Update handles POST /api/updateMyProfile. The request body can only
// name the editable fields; everything else is ignored by the decoder's
// target type.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req model.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CompleteOnboarding handles POST /api/CompleteOnboarding.
func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	updated, err := h.users.CompleteOnboarding(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

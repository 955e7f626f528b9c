package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/service"
)

type profileResponse struct {
	Profile *model.Profile `json:"profile"`
}

// ProfileHandler serves public profiles and follow/unfollow.
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// HandleGet returns a profile as seen by the caller, who may be anonymous.
//
// HTTP: GET /api/profiles/{username}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), chi.URLParam(r, "username"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse{Profile: p})
}

// HandleFollow makes the caller follow {username}.
//
// HTTP: POST /api/profiles/{username}/follow
func (h *ProfileHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Follow(r.Context(), viewerID(r), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse{Profile: p})
}

// HandleUnfollow removes the follow edge.
//
// HTTP: DELETE /api/profiles/{username}/follow
func (h *ProfileHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Unfollow(r.Context(), viewerID(r), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse{Profile: p})
}

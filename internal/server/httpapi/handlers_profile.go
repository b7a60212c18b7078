package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/akarpovs/viewtube/internal/server/models"
)

// handleCurrentUser returns the authenticated account's public profile.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.CurrentUser(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, okWithData(profile))
}

type updateAccountRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// handleUpdateAccount replaces display name and email together. Partial
// updates are rejected.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse("invalid request body"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, validationError(err.(validator.ValidationErrors)))
		return
	}

	profile, err := s.users.UpdateProfile(r.Context(), accountIDFromContext(r.Context()), req.DisplayName, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, okWithData(profile))
}

// handleUpdateAvatar swaps the avatar: the new file is uploaded, the old
// asset deleted, and only then the reference persisted.
func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleMediaSwap(w, r, "avatar", s.users.UpdateAvatar)
}

// handleUpdateCoverImage swaps the cover image.
func (s *Server) handleUpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	s.handleMediaSwap(w, r, "coverImage", s.users.UpdateCoverImage)
}

// handleMediaSwap is the shared avatar/cover handler: buffer the multipart
// file locally, run the swap, and remove the local temp artifact whether the
// upload succeeded or not.
func (s *Server) handleMediaSwap(w http.ResponseWriter, r *http.Request, field string,
	swap func(ctx context.Context, accountID, localPath string) (*models.Profile, error)) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse("expected multipart form data"))
		return
	}

	path, cleanup, err := saveUploadedFile(r, field, true)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := swap(r.Context(), accountIDFromContext(r.Context()), path)
	if err != nil {
		s.log.Error(r.Context(), "media swap failed", "field", field, "error", err.Error())
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, okWithData(profile))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// handleChangePassword re-hashes and persists the new password before
// responding.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse("invalid request body"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, validationError(err.(validator.ValidationErrors)))
		return
	}

	err := s.users.ChangePassword(r.Context(), accountIDFromContext(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, okWithData(map[string]any{"changed": true}))
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/akarpovs/viewtube/internal/common"
	"github.com/akarpovs/viewtube/internal/metrics"
	"github.com/akarpovs/viewtube/internal/server/services"
)

// handleRegister creates a new account from a multipart form: text fields
// handle/email/displayName/password plus a required avatar file and an
// optional coverImage file.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse("expected multipart form data"))
		return
	}

	avatarPath, cleanupAvatar, err := saveUploadedFile(r, "avatar", true)
	defer cleanupAvatar()
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}

	coverPath, cleanupCover, err := saveUploadedFile(r, "coverImage", false)
	defer cleanupCover()
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}

	profile, err := s.users.Register(r.Context(), services.RegisterParams{
		Handle:         r.FormValue("handle"),
		Email:          r.FormValue("email"),
		DisplayName:    r.FormValue("displayName"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateAccount):
			metrics.Registrations.WithLabelValues("duplicate").Inc()
		case errors.Is(err, common.ErrValidation):
			metrics.Registrations.WithLabelValues("rejected").Inc()
		default:
			s.log.Error(r.Context(), "registration failed", "error", err.Error())
			metrics.Registrations.WithLabelValues("error").Inc()
		}
		writeError(w, r, err)
		return
	}

	metrics.Registrations.WithLabelValues("ok").Inc()
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, okWithData(profile))
}

type loginRequest struct {
	Handle   string `json:"handle" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Handle"`
	Password string `json:"password" validate:"required"`
}

// handleLogin verifies credentials and opens a session: both tokens are set
// as cookies and echoed in the body.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
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

	identity := req.Handle
	if identity == "" {
		identity = req.Email
	}

	profile, pair, err := s.users.Login(r.Context(), identity, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues("rejected").Inc()
		} else {
			s.log.Error(r.Context(), "login failed", "error", err.Error())
			metrics.Logins.WithLabelValues("error").Inc()
		}
		writeError(w, r, err)
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	s.setSessionCookies(w, pair)
	render.JSON(w, r, okWithData(map[string]any{
		"user":         profile,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// handleRefresh rotates the session. The refresh token is taken from the
// cookie, or from the request body as a fallback.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(refreshCookieName); err == nil {
		token = c.Value
	}
	if token == "" && r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		metrics.TokenRotations.WithLabelValues("invalid").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, errorResponse("missing refresh token"))
		return
	}

	pair, err := s.users.Refresh(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenMismatch):
			metrics.TokenRotations.WithLabelValues("mismatch").Inc()
		case errors.Is(err, common.ErrInvalidToken):
			metrics.TokenRotations.WithLabelValues("invalid").Inc()
		default:
			s.log.Error(r.Context(), "token rotation failed", "error", err.Error())
			metrics.TokenRotations.WithLabelValues("error").Inc()
		}
		writeError(w, r, err)
		return
	}

	metrics.TokenRotations.WithLabelValues("ok").Inc()
	s.setSessionCookies(w, pair)
	render.JSON(w, r, okWithData(map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}))
}

// handleLogout clears the stored refresh token and expires the cookies.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	accountID := accountIDFromContext(r.Context())

	if err := s.users.Logout(r.Context(), accountID); err != nil {
		s.log.Error(r.Context(), "logout failed", "error", err.Error())
		writeError(w, r, err)
		return
	}

	s.clearSessionCookies(w)
	render.JSON(w, r, okWithData(map[string]any{"loggedOut": true}))
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/akarpovs/viewtube/internal/server/models"
)

// handleChannelProfile returns the channel summary for the handle in the
// URL, as seen by the authenticated viewer.
func (s *Server) handleChannelProfile(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse("channel handle is required"))
		return
	}

	profile, err := s.channels.GetChannelProfile(r.Context(), accountIDFromContext(r.Context()), handle)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, okWithData(profile))
}

// handleWatchHistory returns the viewer's hydrated watch history in stored
// order.
func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.channels.GetWatchHistory(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if history == nil {
		history = []*models.VideoView{}
	}
	render.JSON(w, r, okWithData(history))
}

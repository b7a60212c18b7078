package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/akarpovs/viewtube/internal/metrics"
)

type contextKey string

const accountIDKey contextKey = "accountID"

// accountIDFromContext returns the authenticated account id, or "" when the
// request did not pass the auth middleware.
func accountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// requireAuth resolves the access token from the auth cookie or the
// Authorization header and injects the account id into the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(accessCookieName); err == nil {
			token = c.Value
		}
		if token == "" {
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, errorResponse("missing access token"))
			return
		}

		claims, err := s.tokens.ParseAccessToken(token)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, errorResponse("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, claims.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observeRequests records per-route latency and status.
func observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

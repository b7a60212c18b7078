package httpapi

import (
	"net/http"
	"time"

	"github.com/akarpovs/viewtube/internal/server/services"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// setSessionCookies stores both tokens as http-only cookies. The same values
// are always echoed in the response body for clients that cannot use
// cookies.
func (s *Server) setSessionCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(s.cfg.Tokens.AccessTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.HTTPServer.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(s.cfg.Tokens.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.HTTPServer.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both auth cookies.
func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cfg.HTTPServer.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akarpovs/viewtube/internal/logging"
	"github.com/akarpovs/viewtube/internal/server/auth"
	"github.com/akarpovs/viewtube/internal/server/config"
	"github.com/akarpovs/viewtube/internal/server/models"
	"github.com/akarpovs/viewtube/internal/server/services"
)

// UserService is the account/session surface the transport depends on.
type UserService interface {
	Register(ctx context.Context, p services.RegisterParams) (*models.Profile, error)
	Login(ctx context.Context, identity, password string) (*models.Profile, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, accountID string) error
	CurrentUser(ctx context.Context, accountID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, accountID, displayName, email string) (*models.Profile, error)
	UpdateAvatar(ctx context.Context, accountID, localPath string) (*models.Profile, error)
	UpdateCoverImage(ctx context.Context, accountID, localPath string) (*models.Profile, error)
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
}

// ChannelService is the read-model surface the transport depends on.
type ChannelService interface {
	GetChannelProfile(ctx context.Context, viewerID, handle string) (*models.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, viewerID string) ([]*models.VideoView, error)
}

// Server wires the HTTP routes to the services.
type Server struct {
	cfg      *config.Config
	log      logging.Logger
	users    UserService
	channels ChannelService
	tokens   *auth.TokenMaker
	validate *validator.Validate

	httpServer *http.Server
}

func NewServer(cfg *config.Config, log logging.Logger, users UserService, channels ChannelService, tokens *auth.TokenMaker) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		users:    users,
		channels: channels,
		tokens:   tokens,
		validate: validator.New(),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		observeRequests,
	)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh-token", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/current-user", s.handleCurrentUser)
			r.Post("/change-password", s.handleChangePassword)
			r.Patch("/update-account", s.handleUpdateAccount)
			r.Patch("/avatar", s.handleUpdateAvatar)
			r.Patch("/cover-image", s.handleUpdateCoverImage)
			r.Get("/c/{handle}", s.handleChannelProfile)
			r.Get("/history", s.handleWatchHistory)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, okWithData(map[string]string{"status": "up"}))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

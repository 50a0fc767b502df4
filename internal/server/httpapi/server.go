package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/chathub/internal/logging"
	"github.com/dmitrijs2005/chathub/internal/server/realtime"
	"github.com/dmitrijs2005/chathub/internal/server/services"
)

// Server wires the services into an HTTP surface and owns the listener.
type Server struct {
	addr   string
	logger logging.Logger
	auth   *services.AuthService
	users  *services.UserService
	files  *services.FileService
	hub    *realtime.Hub
}

func NewServer(addr string, logger logging.Logger, authSvc *services.AuthService, userSvc *services.UserService, fileSvc *services.FileService, hub *realtime.Hub) *Server {
	return &Server{
		addr:   addr,
		logger: logger,
		auth:   authSvc,
		users:  userSvc,
		files:  fileSvc,
		hub:    hub,
	}
}

// Handler assembles the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", s.handleHealth)
	r.Get("/ws", realtime.ServeWS(s.hub, s.logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/profile", s.handleProfile)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleUserList)
		r.Get("/{id}", s.handleUserGet)
		r.Put("/{id}", s.handleUserUpdate)
		r.Delete("/{id}", s.handleUserDelete)
	})

	r.Route("/files", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.handleFileUpload)
		r.Get("/{id}/download", s.handleFileDownload)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "server is running", nil)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info(shutdownCtx, "shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// Package server assembles the application: configuration, database,
// repositories, services, the realtime hub and the HTTP surface.
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/chathub/internal/logging"
	"github.com/dmitrijs2005/chathub/internal/server/auth"
	"github.com/dmitrijs2005/chathub/internal/server/config"
	"github.com/dmitrijs2005/chathub/internal/server/httpapi"
	"github.com/dmitrijs2005/chathub/internal/server/realtime"
	"github.com/dmitrijs2005/chathub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chathub/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(cfg *config.Config) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return &App{config: cfg, logger: logger}
}

// Run starts the server and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	db, err := sql.Open("pgx", a.config.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		return err
	}
	a.logger.Info(ctx, "migrations applied")

	authSvc := services.NewAuthService(db, m, auth.BcryptVerifier{}, a.config)
	userSvc := services.NewUserService(db, m)
	fileSvc := services.NewFileService(db, m, a.config)

	hub := realtime.NewHub(realtime.NewRegistry(), a.logger)

	srv := httpapi.NewServer(a.config.EndpointAddr, a.logger, authSvc, userSvc, fileSvc, hub)
	return srv.Run(ctx)
}

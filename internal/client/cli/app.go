// Package cli implements the interactive field-client shell: record
// routes offline, inspect the queue, and push it to the cloud on demand.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/trailfield/trailfield/internal/client/client"
	"github.com/trailfield/trailfield/internal/client/config"
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/services"
	"github.com/trailfield/trailfield/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	repos       *client.Repositories
	authService services.AuthService
	queue       *services.QueueService
	syncService *services.SyncService
	owner       models.Owner
	reader      *bufio.Reader
	logger      logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	repos, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr)

	email := services.NewEmailBackupService(repos.EmailBackup, services.NewMailer(c.EmailEndpoint, c.EmailAccessKey), logger)
	uploads := services.NewUploadService(apiClient, repos.Artifacts, logger)

	app := &App{
		config:      c,
		repos:       repos,
		authService: services.NewAuthService(apiClient, repos.Metadata, logger),
		queue:       services.NewQueueService(repos.Artifacts, email, logger),
		syncService: services.NewSyncService(apiClient, repos.Artifacts, uploads, email, logger),
		reader:      bufio.NewReader(os.Stdin),
		logger:      logger,
	}

	// a previous session keeps attributing saves across restarts
	if owner, err := app.authService.CurrentOwner(ctx); err == nil {
		app.owner = owner
	}

	return app, nil
}

func (a *App) mode() Mode {
	if a.syncService.Online() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	defer a.repos.DB.Close()

	go a.syncService.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

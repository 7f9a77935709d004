// Package server initializes and runs the MoodNotes server: it opens the
// database, applies migrations and starts the HTTP/websocket endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/moodnotes/internal/logging"
	"github.com/dmitrijs2005/moodnotes/internal/server/config"
	"github.com/dmitrijs2005/moodnotes/internal/server/httpapi"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moodnotes/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	noteService *services.NoteService
	blobService *services.BlobService
	hub         *httpapi.Hub
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hub := httpapi.NewHub(logger)

	us := services.NewUserService(db, m, c)
	ns := services.NewNoteService(db, m, hub)
	bs := services.NewBlobService(c)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: us,
		noteService: ns,
		blobService: bs,
		hub:         hub,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.noteService, app.blobService, app.hub, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}

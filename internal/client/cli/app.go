// Package cli implements the interactive MoodNotes client: a REPL over the
// note store plus the background feed, connectivity watcher and ledger
// drainer.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/client/config"
	"github.com/dmitrijs2005/moodnotes/internal/client/connectivity"
	"github.com/dmitrijs2005/moodnotes/internal/client/db"
	"github.com/dmitrijs2005/moodnotes/internal/client/services"
	"github.com/dmitrijs2005/moodnotes/internal/client/store"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
	"github.com/rs/zerolog"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    *db.Repositories
	client   api.Client
	auth     *services.AuthService
	editor   *services.Editor
	store    *store.Store
	feed     *services.Feed
	drainer  *services.Drainer
	observer *connectivity.Observer
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	logger := logging.NewZerologLogger(zl)

	repos, err := db.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err.Error())
		return nil, err
	}

	client := api.NewHTTPClient(c.ServerURL)

	observer := connectivity.NewObserver(client, c.OnlineCheckInterval)
	st := store.New(client, time.Local)

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		client:   client,
		auth:     services.NewAuthService(client, c.SignInSettleDelay, logger),
		editor:   services.NewEditor(st, client, repos.Pending, logger),
		store:    st,
		feed:     services.NewFeed(client, logger),
		drainer:  services.NewDrainer(client, repos.Pending, observer.Current, logger),
		observer: observer,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsLoggedIn()
}

// Run starts the background workers and hands control to the REPL until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.observer.Run(ctx)
	go a.drainer.Run(ctx, a.observer.Subscribe())

	a.Root(ctx)

	a.feed.Stop()
	if err := a.repos.Close(); err != nil {
		a.logger.Error(ctx, "error closing database", "error", err.Error())
	}
	if err := a.client.Close(); err != nil {
		a.logger.Error(ctx, "error closing client", "error", err.Error())
	}
}

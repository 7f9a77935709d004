// Package httpapi exposes the REST and websocket surface of the server:
// session endpoints, owner-scoped note CRUD, image presigning and the
// per-user change feed.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/logging"
	"github.com/dmitrijs2005/moodnotes/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	notes     *services.NoteService
	blobs     *services.BlobService
	hub       *Hub
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us *services.UserService, ns *services.NoteService, bs *services.BlobService, hub *Hub, secretKey string) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		notes:     ns,
		blobs:     bs,
		hub:       hub,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", s.ping)

		r.Post("/auth/signin", s.signIn)
		r.Post("/auth/refresh", s.refresh)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)

			r.Get("/notes", s.listNotes)
			r.Post("/notes", s.addNote)
			r.Delete("/notes", s.deleteAllNotes)
			r.Get("/notes/events", s.subscribeEvents)
			r.Get("/notes/{id}", s.getNote)
			r.Put("/notes/{id}", s.updateNote)
			r.Delete("/notes/{id}", s.deleteNote)

			r.Post("/images/presign-upload", s.presignUpload)
			r.Post("/images/presign-download", s.presignDownload)
			r.Get("/images", s.listImages)
			r.Delete("/images", s.deleteImage)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.hub.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

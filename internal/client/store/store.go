// Package store adapts the remote note collection to the view layer: queries
// come back as request-state streams with notes grouped by calendar day in
// the viewer's zone.
package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/common"
)

// Store wraps the API client with the query shape the UI consumes.
type Store struct {
	client   api.Client
	location *time.Location
}

func New(client api.Client, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{client: client, location: loc}
}

// stream runs fetch in the background and emits Loading followed by exactly
// one settled state. A signed-out client settles immediately with an error
// and no request is made.
func (s *Store) stream(ctx context.Context, fetch func(context.Context) ([]models.Note, error)) <-chan models.RequestState[[]models.GroupedNotes] {

	out := make(chan models.RequestState[[]models.GroupedNotes], 2)

	if !s.client.IsLoggedIn() {
		out <- models.Failure[[]models.GroupedNotes](common.ErrorUnauthenticated)
		close(out)
		return out
	}

	out <- models.Loading[[]models.GroupedNotes]()

	go func() {
		defer close(out)

		notes, err := fetch(ctx)
		if err != nil {
			out <- models.Failure[[]models.GroupedNotes](err)
			return
		}

		out <- models.Success(models.GroupByDay(notes, s.location))
	}()

	return out
}

// GetAll streams every note of the signed-in user grouped by day, newest
// first.
func (s *Store) GetAll(ctx context.Context) <-chan models.RequestState[[]models.GroupedNotes] {
	return s.stream(ctx, func(ctx context.Context) ([]models.Note, error) {
		return s.client.GetNotes(ctx)
	})
}

// GetFiltered streams the notes of the calendar day containing the given
// instant, in the viewer's zone.
func (s *Store) GetFiltered(ctx context.Context, day time.Time) <-chan models.RequestState[[]models.GroupedNotes] {
	from, to := models.DayWindow(day, s.location)
	return s.stream(ctx, func(ctx context.Context) ([]models.Note, error) {
		return s.client.GetNotesBetween(ctx, from, to)
	})
}

// GetOne fetches a single owned note.
func (s *Store) GetOne(ctx context.Context, id string) (*models.Note, error) {
	if !s.client.IsLoggedIn() {
		return nil, common.ErrorUnauthenticated
	}
	return s.client.GetNote(ctx, id)
}

// Add inserts a new note.
func (s *Store) Add(ctx context.Context, note *models.Note) (*models.Note, error) {
	if !s.client.IsLoggedIn() {
		return nil, common.ErrorUnauthenticated
	}
	return s.client.AddNote(ctx, note)
}

// Update rewrites an existing note. A missing id is an error, not an insert.
func (s *Store) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	if !s.client.IsLoggedIn() {
		return nil, common.ErrorUnauthenticated
	}
	return s.client.UpdateNote(ctx, note)
}

// Delete removes a note and returns the deleted document.
func (s *Store) Delete(ctx context.Context, id string) (*models.Note, error) {
	if !s.client.IsLoggedIn() {
		return nil, common.ErrorUnauthenticated
	}
	return s.client.DeleteNote(ctx, id)
}

// DeleteAll removes every note of the signed-in user.
func (s *Store) DeleteAll(ctx context.Context) error {
	if !s.client.IsLoggedIn() {
		return common.ErrorUnauthenticated
	}
	return s.client.DeleteAllNotes(ctx)
}

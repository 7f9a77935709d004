package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/mood"
	"github.com/dmitrijs2005/moodnotes/internal/server/models"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/repomanager"
)

// NoteChange is broadcast to the owner's live subscriptions after a write.
type NoteChange struct {
	Action string `json:"action"` // added | updated | deleted | cleared
	NoteID string `json:"note_id,omitempty"`
}

// ChangePublisher delivers NoteChange events to a user's subscribers.
// The httpapi websocket hub implements it; a no-op works fine in tests.
type ChangePublisher interface {
	Publish(userID string, change NoteChange)
}

// NopPublisher discards all changes.
type NopPublisher struct{}

func (NopPublisher) Publish(string, NoteChange) {}

// NoteService implements owner-scoped note CRUD. Every operation takes the
// authenticated user id explicitly; there is no ambient session state.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   ChangePublisher
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, p ChangePublisher) *NoteService {
	if p == nil {
		p = NopPublisher{}
	}
	return &NoteService{db: db, repomanager: m, publisher: p}
}

func (s *NoteService) validate(note *models.Note) error {
	if !mood.Valid(mood.Mood(note.Mood)) {
		return fmt.Errorf("%w: %q", common.ErrInvalidMood, note.Mood)
	}
	return nil
}

// GetAll returns every note owned by userID, newest first.
func (s *NoteService) GetAll(ctx context.Context, userID string) ([]*models.Note, error) {
	repo := s.repomanager.Notes(s.db)

	result, err := repo.SelectByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error selecting notes: %w", err)
	}
	return result, nil
}

// GetBetween returns notes with from <= date < to, newest first. The caller
// supplies the window in its own zone offset.
func (s *NoteService) GetBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.Note, error) {
	repo := s.repomanager.Notes(s.db)

	result, err := repo.SelectByOwnerBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error selecting notes: %w", err)
	}
	return result, nil
}

// GetOne returns a single note owned by userID.
func (s *NoteService) GetOne(ctx context.Context, userID, id string) (*models.Note, error) {
	repo := s.repomanager.Notes(s.db)

	note, err := repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Add inserts a new note for userID. A zero date defaults to now.
func (s *NoteService) Add(ctx context.Context, userID string, note *models.Note) (*models.Note, error) {
	if err := s.validate(note); err != nil {
		return nil, err
	}

	note.OwnerID = userID
	if note.Date.IsZero() {
		note.Date = time.Now()
	}

	repo := s.repomanager.Notes(s.db)

	created, err := repo.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	s.publisher.Publish(userID, NoteChange{Action: "added", NoteID: created.ID})
	return created, nil
}

// Update rewrites an existing note. It is not an upsert: a missing id yields
// ErrorNotFound and nothing is written.
func (s *NoteService) Update(ctx context.Context, userID string, note *models.Note) (*models.Note, error) {
	if err := s.validate(note); err != nil {
		return nil, err
	}

	note.OwnerID = userID

	repo := s.repomanager.Notes(s.db)

	if err := repo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, NoteChange{Action: "updated", NoteID: note.ID})
	return note, nil
}

// Delete removes the note and returns the deleted document so the caller can
// submit blob deletions for its image paths.
func (s *NoteService) Delete(ctx context.Context, userID, id string) (*models.Note, error) {
	repo := s.repomanager.Notes(s.db)

	note, err := repo.Delete(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, NoteChange{Action: "deleted", NoteID: id})
	return note, nil
}

// DeleteAll removes every note owned by userID.
func (s *NoteService) DeleteAll(ctx context.Context, userID string) error {
	repo := s.repomanager.Notes(s.db)

	if err := repo.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("error deleting notes: %w", err)
	}

	s.publisher.Publish(userID, NoteChange{Action: "cleared"})
	return nil
}

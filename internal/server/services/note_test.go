package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/dbx"
	"github.com/dmitrijs2005/moodnotes/internal/server/models"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// fakeNotesRepo is an in-memory notes.Repository.
type fakeNotesRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*models.Note
}

func newFakeNotesRepo() *fakeNotesRepo {
	return &fakeNotesRepo{rows: make(map[string]*models.Note)}
}

func (f *fakeNotesRepo) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *note
	cp.ID = string(rune('a' + f.nextID - 1))
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeNotesRepo) Update(ctx context.Context, note *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rows[note.ID]
	if !ok || existing.OwnerID != note.OwnerID {
		return common.ErrorNotFound
	}
	cp := *note
	f.rows[note.ID] = &cp
	return nil
}

func (f *fakeNotesRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok || n.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	out := *n
	return &out, nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, id, ownerID string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok || n.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	delete(f.rows, id)
	out := *n
	return &out, nil
}

func (f *fakeNotesRepo) DeleteAll(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, n := range f.rows {
		if n.OwnerID == ownerID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeNotesRepo) SelectByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Note
	for _, n := range f.rows {
		if n.OwnerID == ownerID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeNotesRepo) SelectByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*models.Note, error) {
	all, _ := f.SelectByOwner(ctx, ownerID)
	var out []*models.Note
	for _, n := range all {
		if !n.Date.Before(from) && n.Date.Before(to) {
			out = append(out, n)
		}
	}
	return out, nil
}

// fakeRepoManager vends the in-memory repos regardless of the DBTX handle.
type fakeRepoManager struct {
	notesRepo  *fakeNotesRepo
	usersRepo  *fakeUsersRepo
	tokensRepo *fakeTokensRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		notesRepo:  newFakeNotesRepo(),
		usersRepo:  newFakeUsersRepo(),
		tokensRepo: newFakeTokensRepo(),
	}
}

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return f.usersRepo }
func (f *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return f.tokensRepo }
func (f *fakeRepoManager) Notes(db dbx.DBTX) notes.Repository                 { return f.notesRepo }
func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

// recordingPublisher captures published changes.
type recordingPublisher struct {
	mu      sync.Mutex
	changes []NoteChange
}

func (r *recordingPublisher) Publish(userID string, change NoteChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recordingPublisher) all() []NoteChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]NoteChange(nil), r.changes...)
}

func TestNoteService_Add_AssignsOwnerAndPublishes(t *testing.T) {
	m := newFakeRepoManager()
	pub := &recordingPublisher{}
	svc := NewNoteService(nil, m, pub)

	created, err := svc.Add(context.Background(), "u1", &models.Note{
		Title: "A", Description: "B", Mood: "Happy",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "u1", created.OwnerID)
	require.False(t, created.Date.IsZero())

	changes := pub.all()
	require.Len(t, changes, 1)
	require.Equal(t, "added", changes[0].Action)
}

func TestNoteService_Add_RejectsInvalidMood(t *testing.T) {
	m := newFakeRepoManager()
	svc := NewNoteService(nil, m, nil)

	_, err := svc.Add(context.Background(), "u1", &models.Note{Mood: "Ecstatic"})
	require.ErrorIs(t, err, common.ErrInvalidMood)
}

func TestNoteService_Update_MissingIsNotFound(t *testing.T) {
	m := newFakeRepoManager()
	pub := &recordingPublisher{}
	svc := NewNoteService(nil, m, pub)

	_, err := svc.Update(context.Background(), "u1", &models.Note{
		ID: "missing", Mood: "Neutral", Date: time.Now(),
	})
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.Empty(t, pub.all())
}

func TestNoteService_Update_Success(t *testing.T) {
	m := newFakeRepoManager()
	pub := &recordingPublisher{}
	svc := NewNoteService(nil, m, pub)

	created, err := svc.Add(context.Background(), "u1", &models.Note{
		Title: "old", Mood: "Neutral",
	})
	require.NoError(t, err)

	created.Description = "new description"
	updated, err := svc.Update(context.Background(), "u1", created)
	require.NoError(t, err)
	require.Equal(t, "new description", updated.Description)
	require.Equal(t, "old", updated.Title)

	changes := pub.all()
	require.Len(t, changes, 2)
	require.Equal(t, "updated", changes[1].Action)
}

func TestNoteService_Delete_OtherOwnerDenied(t *testing.T) {
	m := newFakeRepoManager()
	svc := NewNoteService(nil, m, nil)

	created, err := svc.Add(context.Background(), "u1", &models.Note{Mood: "Calm"})
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), "u2", created.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// still readable by the real owner
	got, err := svc.GetOne(context.Background(), "u1", created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestNoteService_OwnerIsolation(t *testing.T) {
	m := newFakeRepoManager()
	svc := NewNoteService(nil, m, nil)

	_, err := svc.Add(context.Background(), "u1", &models.Note{Title: "mine", Mood: "Happy"})
	require.NoError(t, err)

	other, err := svc.GetAll(context.Background(), "u2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestNoteService_GetBetween_HalfOpen(t *testing.T) {
	m := newFakeRepoManager()
	svc := NewNoteService(nil, m, nil)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inside, err := svc.Add(context.Background(), "u1", &models.Note{
		Title: "in", Mood: "Happy", Date: day.Add(23*time.Hour + 59*time.Minute),
	})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "u1", &models.Note{
		Title: "boundary", Mood: "Happy", Date: day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	got, err := svc.GetBetween(context.Background(), "u1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, inside.ID, got[0].ID)
}

func TestNoteService_DeleteAll_PublishesCleared(t *testing.T) {
	m := newFakeRepoManager()
	pub := &recordingPublisher{}
	svc := NewNoteService(nil, m, pub)

	_, err := svc.Add(context.Background(), "u1", &models.Note{Mood: "Neutral"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAll(context.Background(), "u1"))

	all, err := svc.GetAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, all)

	changes := pub.all()
	require.Equal(t, "cleared", changes[len(changes)-1].Action)
}

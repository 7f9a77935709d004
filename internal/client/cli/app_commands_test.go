package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/client/connectivity"
	"github.com/dmitrijs2005/moodnotes/internal/client/db"
	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/client/services"
	"github.com/dmitrijs2005/moodnotes/internal/client/store"
	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory api.Client covering the surface the command
// handlers touch.
type fakeAPI struct {
	api.Client

	mu       sync.Mutex
	loggedIn bool
	userID   string
	nextID   int
	order    []string
	notes    map[string]*models.Note
	images   []string

	deleted []string

	signInErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		loggedIn: true,
		userID:   "u1",
		notes:    make(map[string]*models.Note),
	}
}

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) SignIn(ctx context.Context, identityToken string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = true
	return f.userID, nil
}

func (f *fakeAPI) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = false
}

func (f *fakeAPI) IsLoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}

func (f *fakeAPI) UserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loggedIn {
		return ""
	}
	return f.userID
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

func (f *fakeAPI) GetNotes(ctx context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Note
	for _, id := range f.order {
		if n, ok := f.notes[id]; ok {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetNotesBetween(ctx context.Context, from, to time.Time) ([]models.Note, error) {
	all, _ := f.GetNotes(ctx)
	var out []models.Note
	for _, n := range all {
		if !n.Date.Before(from) && n.Date.Before(to) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetNote(ctx context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeAPI) AddNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *note
	cp.ID = "n" + string(rune('0'+f.nextID))
	if cp.Date.IsZero() {
		cp.Date = time.Now()
	}
	f.notes[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
	out := cp
	return &out, nil
}

func (f *fakeAPI) UpdateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[note.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *note
	f.notes[note.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeAPI) DeleteNote(ctx context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.notes, id)
	out := *n
	return &out, nil
}

func (f *fakeAPI) DeleteAllNotes(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = make(map[string]*models.Note)
	f.order = nil
	return nil
}

func (f *fakeAPI) ListImages(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.images...), nil
}

func (f *fakeAPI) PresignDownload(ctx context.Context, path string) (string, error) {
	return "http://signed-get/" + path, nil
}

func (f *fakeAPI) DeleteImage(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeAPI) Subscribe(ctx context.Context) (<-chan api.NoteChange, error) {
	ch := make(chan api.NoteChange)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeAPI) seed(note models.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := note
	f.notes[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
}

func newTestApp(t *testing.T, input string) (*App, *fakeAPI, *bytes.Buffer) {
	t.Helper()

	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	repos, err := db.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	f := newFakeAPI()
	st := store.New(f, time.Local)
	var out bytes.Buffer

	app := &App{
		logger:   l,
		repos:    repos,
		client:   f,
		auth:     services.NewAuthService(f, 0, l),
		editor:   services.NewEditor(st, f, repos.Pending, l),
		store:    st,
		feed:     services.NewFeed(f, l),
		drainer:  services.NewDrainer(f, repos.Pending, func() connectivity.Status { return connectivity.StatusAvailable }, l),
		observer: connectivity.NewObserver(f, time.Second),
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      &out,
	}
	return app, f, &out
}

func TestApp_ListPrintsGroups(t *testing.T) {
	app, f, out := newTestApp(t, "")
	f.seed(models.Note{ID: "n1", Title: "Morning walk", Mood: "Calm",
		Date: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)})
	f.seed(models.Note{ID: "n2", Title: "Late night", Mood: "Lonely",
		Date: time.Date(2026, 2, 28, 12, 0, 0, 0, time.Local)})

	require.NoError(t, app.List(context.Background()))

	s := out.String()
	require.Contains(t, s, "Sun, 01 Mar 2026")
	require.Contains(t, s, "Sat, 28 Feb 2026")
	require.Contains(t, s, "[n1] Calm  Morning walk")
	require.Contains(t, s, "[n2] Lonely  Late night")
}

func TestApp_ListEmpty(t *testing.T) {
	app, _, out := newTestApp(t, "")
	require.NoError(t, app.List(context.Background()))
	require.Contains(t, out.String(), "No notes yet")
}

func TestApp_DayFiltersNotes(t *testing.T) {
	app, f, out := newTestApp(t, "")
	f.seed(models.Note{ID: "n1", Title: "In window", Mood: "Happy",
		Date: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)})
	f.seed(models.Note{ID: "n2", Title: "Out of window", Mood: "Bored",
		Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)})

	require.NoError(t, app.Day(context.Background(), "2026-03-01"))

	s := out.String()
	require.Contains(t, s, "In window")
	require.NotContains(t, s, "Out of window")
}

func TestApp_DayRejectsBadDate(t *testing.T) {
	app, _, out := newTestApp(t, "")
	require.Error(t, app.Day(context.Background(), "yesterday"))
	require.Contains(t, out.String(), "Invalid date")
}

func TestApp_AddCreatesNote(t *testing.T) {
	app, f, out := newTestApp(t, "My day\nHappy\ngood stuff\n\n\n")

	require.NoError(t, app.Add(context.Background()))
	require.Contains(t, out.String(), "Saved note")

	notes, _ := f.GetNotes(context.Background())
	require.Len(t, notes, 1)
	require.Equal(t, "My day", notes[0].Title)
	require.Equal(t, "Happy", notes[0].Mood)
	require.Equal(t, "good stuff", notes[0].Description)
}

func TestApp_AddDefaultsToNeutralMood(t *testing.T) {
	app, f, _ := newTestApp(t, "Untitled\n\n\n\n")

	require.NoError(t, app.Add(context.Background()))

	notes, _ := f.GetNotes(context.Background())
	require.Len(t, notes, 1)
	require.Equal(t, "Neutral", notes[0].Mood)
}

func TestApp_AddRejectsUnknownMood(t *testing.T) {
	app, f, out := newTestApp(t, "Untitled\nGrumpy\n")

	require.ErrorIs(t, app.Add(context.Background()), common.ErrInvalidMood)
	require.Contains(t, out.String(), "Unknown mood")

	notes, _ := f.GetNotes(context.Background())
	require.Empty(t, notes)
}

func TestApp_EditKeepsValuesOnEmptyInput(t *testing.T) {
	app, f, out := newTestApp(t, "\n\n\n\n\n")
	date := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.seed(models.Note{ID: "n1", Title: "Original", Mood: "Calm",
		Description: "as it was", Date: date})

	require.NoError(t, app.Edit(context.Background(), "n1"))
	require.Contains(t, out.String(), "Updated note n1")

	n, err := f.GetNote(context.Background(), "n1")
	require.NoError(t, err)
	require.Equal(t, "Original", n.Title)
	require.Equal(t, "Calm", n.Mood)
	require.Equal(t, "as it was", n.Description)
	require.True(t, n.Date.Equal(date), "timestamp is preserved")
}

func TestApp_EditRemovesImage(t *testing.T) {
	app, f, _ := newTestApp(t, "\n\n\n\nimages/u1/old.jpg\n")
	f.seed(models.Note{ID: "n1", Title: "With images", Mood: "Happy",
		Date: time.Now(), Images: []string{"images/u1/old.jpg", "images/u1/keep.jpg"}})

	require.NoError(t, app.Edit(context.Background(), "n1"))

	n, err := f.GetNote(context.Background(), "n1")
	require.NoError(t, err)
	require.Equal(t, []string{"images/u1/keep.jpg"}, n.Images)
	require.Contains(t, f.deleted, "images/u1/old.jpg")
}

func TestApp_EditMissingNote(t *testing.T) {
	app, _, out := newTestApp(t, "")
	require.ErrorIs(t, app.Edit(context.Background(), "ghost"), common.ErrorNotFound)
	require.Contains(t, out.String(), "Error:")
}

func TestApp_DeleteRemovesNoteAndImages(t *testing.T) {
	app, f, out := newTestApp(t, "")
	f.seed(models.Note{ID: "n1", Title: "Doomed", Mood: "Awful",
		Date: time.Now(), Images: []string{"images/u1/a.jpg"}})

	require.NoError(t, app.Delete(context.Background(), "n1"))
	require.Contains(t, out.String(), "Deleted note n1")

	_, err := f.GetNote(context.Background(), "n1")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.Contains(t, f.deleted, "images/u1/a.jpg")
}

func TestApp_DeleteAllNeedsConfirmation(t *testing.T) {
	app, f, out := newTestApp(t, "no\n")
	f.seed(models.Note{ID: "n1", Title: "Kept", Mood: "Happy", Date: time.Now()})

	require.NoError(t, app.DeleteAll(context.Background()))
	require.Contains(t, out.String(), "Cancelled")

	notes, _ := f.GetNotes(context.Background())
	require.Len(t, notes, 1)
}

func TestApp_DeleteAllConfirmed(t *testing.T) {
	app, f, out := newTestApp(t, "yes\n")
	f.seed(models.Note{ID: "n1", Title: "Gone", Mood: "Happy", Date: time.Now()})

	require.NoError(t, app.DeleteAll(context.Background()))
	require.Contains(t, out.String(), "All notes deleted")

	notes, _ := f.GetNotes(context.Background())
	require.Empty(t, notes)
}

func TestApp_ImagesListsPaths(t *testing.T) {
	app, f, out := newTestApp(t, "")
	f.images = []string{"images/u1/a.jpg", "images/u1/b.png"}

	require.NoError(t, app.Images(context.Background()))

	s := out.String()
	require.Contains(t, s, "images/u1/a.jpg")
	require.Contains(t, s, "images/u1/b.png")
}

func TestApp_ImagesEmpty(t *testing.T) {
	app, _, out := newTestApp(t, "")
	require.NoError(t, app.Images(context.Background()))
	require.Contains(t, out.String(), "No images")
}

func TestApp_DrainWithEmptyLedger(t *testing.T) {
	app, _, out := newTestApp(t, "")
	require.NoError(t, app.Drain(context.Background()))
	require.Contains(t, out.String(), "Pending image operations replayed")
}

func TestApp_LoginAndLogout(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte("id-token"), nil }
	t.Cleanup(func() { readPassword = orig })

	app, f, out := newTestApp(t, "")
	f.loggedIn = false

	require.NoError(t, app.Login(context.Background()))
	require.Contains(t, out.String(), "Signed in as u1")
	require.True(t, app.isLoggedIn())
	require.True(t, app.feed.Active())

	require.NoError(t, app.Logout(context.Background()))
	require.Contains(t, out.String(), "Signed out")
	require.False(t, app.isLoggedIn())
	require.False(t, app.feed.Active())
}

func TestApp_LoginEmptyTokenCancels(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte(""), nil }
	t.Cleanup(func() { readPassword = orig })

	app, _, out := newTestApp(t, "")
	app.client.Logout()

	require.NoError(t, app.Login(context.Background()))
	require.Contains(t, out.String(), "Sign-in cancelled")
	require.False(t, app.isLoggedIn())
}

func TestApp_GetStatus(t *testing.T) {
	app, f, _ := newTestApp(t, "")
	require.Equal(t, "(u1 offline)", app.getStatus())

	f.Logout()
	require.Equal(t, "(offline)", app.getStatus())
}

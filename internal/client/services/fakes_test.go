package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient is an in-memory api.Client. It records the order of operations
// so tests can assert that documents are written before blobs move.
type fakeClient struct {
	api.Client

	mu       sync.Mutex
	loggedIn bool
	nextID   int
	notes    map[string]*models.Note

	ops []string

	presignErr         error
	presignDownloadErr error
	uploadErr          error
	deleteErr  map[string]error // per path; nil entry means success

	// deleteFailures lets a path fail N times before succeeding
	deleteFailures map[string]int
	uploadFailures int

	signInErr    error
	signInUserID string
	pingErr      error

	subscribeCh  chan api.NoteChange
	subscribeErr error
	generation   int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		loggedIn:       true,
		notes:          make(map[string]*models.Note),
		deleteErr:      make(map[string]error),
		deleteFailures: make(map[string]int),
	}
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func (f *fakeClient) opsList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeClient) IsLoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}

func (f *fakeClient) UserID() string { return "u1" }

func (f *fakeClient) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = false
}

func (f *fakeClient) SignIn(ctx context.Context, identityToken string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	f.mu.Lock()
	f.loggedIn = true
	f.mu.Unlock()
	return f.signInUserID, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) GetNote(ctx context.Context, id string) (*models.Note, error) {
	f.record("get:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeClient) AddNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	f.record("add")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *note
	cp.ID = "n" + string(rune('0'+f.nextID))
	if cp.Date.IsZero() {
		cp.Date = time.Now()
	}
	f.notes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeClient) UpdateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	f.record("update:" + note.ID)
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

func (f *fakeClient) DeleteNote(ctx context.Context, id string) (*models.Note, error) {
	f.record("delete:" + id)
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

func (f *fakeClient) PresignUpload(ctx context.Context, fileName, contentType string) (string, string, error) {
	f.record("presign")
	if f.presignErr != nil {
		return "", "", f.presignErr
	}
	path := "images/u1/" + fileName
	return path, "http://signed/" + path, nil
}

func (f *fakeClient) PresignUploadPath(ctx context.Context, path string) (string, error) {
	f.record("presign-path:" + path)
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "http://signed/" + path, nil
}

func (f *fakeClient) PresignDownload(ctx context.Context, path string) (string, error) {
	f.record("presign-download:" + path)
	if f.presignDownloadErr != nil {
		return "", f.presignDownloadErr
	}
	return "http://signed-get/" + path, nil
}

func (f *fakeClient) UploadImage(ctx context.Context, url string, body io.Reader, contentType string) error {
	f.record("upload:" + url)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadFailures > 0 {
		f.uploadFailures--
		err := f.uploadErr
		if f.uploadFailures == 0 {
			// failure budget spent: succeed from now on, like deleteFailures
			f.uploadErr = nil
		}
		return err
	}
	if f.uploadErr != nil {
		return f.uploadErr
	}
	return nil
}

// DeleteImage fails with deleteErr[path] if set. When deleteFailures[path]
// is also set, it fails only that many times before succeeding.
func (f *fakeClient) DeleteImage(ctx context.Context, path string) error {
	f.record("delete-image:" + path)
	f.mu.Lock()
	defer f.mu.Unlock()

	err, ok := f.deleteErr[path]
	if !ok || err == nil {
		return nil
	}
	if n, limited := f.deleteFailures[path]; limited {
		if n > 0 {
			f.deleteFailures[path] = n - 1
			return err
		}
		return nil
	}
	return err
}

func (f *fakeClient) Subscribe(ctx context.Context) (<-chan api.NoteChange, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}

	f.mu.Lock()
	f.generation++
	f.mu.Unlock()

	ch := make(chan api.NoteChange)
	f.mu.Lock()
	f.subscribeCh = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		close(ch)
	}()

	return ch, nil
}

func (f *fakeClient) emit(change api.NoteChange) {
	f.mu.Lock()
	ch := f.subscribeCh
	f.mu.Unlock()
	ch <- change
}

func (f *fakeClient) generations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// fakeLedger is an in-memory pending.Repository.
type fakeLedger struct {
	mu      sync.Mutex
	uploads map[string]*models.PendingUpload
	deletes map[string]*models.PendingDelete
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		uploads: make(map[string]*models.PendingUpload),
		deletes: make(map[string]*models.PendingDelete),
	}
}

func (l *fakeLedger) AddUpload(ctx context.Context, u *models.PendingUpload) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *u
	l.uploads[u.RemoteImagePath] = &cp
	return nil
}

func (l *fakeLedger) SetSessionURI(ctx context.Context, remoteImagePath, sessionURI string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u, ok := l.uploads[remoteImagePath]; ok {
		u.SessionURI = sessionURI
	}
	return nil
}

func (l *fakeLedger) ListUploads(ctx context.Context) ([]*models.PendingUpload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.PendingUpload
	for _, u := range l.uploads {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (l *fakeLedger) RemoveUpload(ctx context.Context, remoteImagePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.uploads, remoteImagePath)
	return nil
}

func (l *fakeLedger) AddDelete(ctx context.Context, d *models.PendingDelete) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *d
	l.deletes[d.RemoteImagePath] = &cp
	return nil
}

func (l *fakeLedger) ListDeletes(ctx context.Context) ([]*models.PendingDelete, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.PendingDelete
	for _, d := range l.deletes {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (l *fakeLedger) RemoveDelete(ctx context.Context, remoteImagePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.deletes, remoteImagePath)
	return nil
}

func (l *fakeLedger) uploadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.uploads)
}

func (l *fakeLedger) deleteCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.deletes)
}

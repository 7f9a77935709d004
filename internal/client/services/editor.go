package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/client/repositories/pending"
	"github.com/dmitrijs2005/moodnotes/internal/client/store"
	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
)

// openLocalFile is a seam so tests can feed image bytes without touching
// the filesystem.
var openLocalFile = func(uri string) (io.ReadCloser, error) {
	return os.Open(uri)
}

// Draft is what the editor screen submits. An empty BoundID means create;
// a non-empty one means update of that exact note.
type Draft struct {
	BoundID     string
	Title       string
	Description string
	Mood        string

	// Date overrides the note timestamp when non-zero. Otherwise an update
	// keeps the stored timestamp and a create gets the current time.
	Date time.Time

	// AddImages are local files to upload alongside the save.
	AddImages []models.GalleryImage
	// KeepImages are already-uploaded remote paths the note retains.
	KeepImages []string
	// RemoveImages are remote paths to delete after the save.
	RemoveImages []string
}

type plannedUpload struct {
	remotePath  string
	localURI    string
	uploadURL   string
	contentType string
}

// blobTask is one follow-up blob mutation emitted by a save or delete.
// Exactly one of upload/remove is set. Tasks run only after the document
// write has succeeded; a failed task becomes a ledger row for the drainer.
type blobTask struct {
	upload *plannedUpload
	remove string
}

// SessionState describes an edit session after Open.
type SessionState int

const (
	// SessionIdle is the new-note flow: nothing loaded, all fields blank.
	SessionIdle SessionState = iota
	// SessionLoaded means the note was fetched and the edit fields are
	// hydrated from it.
	SessionLoaded
)

// Session is one hydrated edit session.
type Session struct {
	State  SessionState
	Note   *models.Note
	Images []models.ResolvedImage
}

// Editor reconciles a submitted draft against the remote store: the note
// document is written first, and only then are image blobs uploaded and
// deleted. A blob operation that fails is recorded in the local ledger
// instead of failing the save.
type Editor struct {
	store  *store.Store
	client api.Client
	ledger pending.Repository
	logger logging.Logger
}

func NewEditor(s *store.Store, client api.Client, ledger pending.Repository, l logging.Logger) *Editor {
	return &Editor{
		store:  s,
		client: client,
		ledger: ledger,
		logger: l.With("module", "editor"),
	}
}

// Open starts an edit session. An empty id is the new-note flow and yields
// an idle session. A non-empty id hydrates from the store; a note that
// vanished in the meantime is a terminal error, not a retry. Each stored
// image reference is resolved to a presigned display URL; a reference that
// fails to resolve keeps an empty handle.
func (e *Editor) Open(ctx context.Context, id string) (*Session, error) {

	if id == "" {
		return &Session{State: SessionIdle}, nil
	}

	note, err := e.store.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}

	images := make([]models.ResolvedImage, 0, len(note.Images))
	for _, path := range note.Images {
		url, perr := e.client.PresignDownload(ctx, path)
		if perr != nil {
			e.logger.Warn(ctx, "Image reference could not be resolved",
				"path", path, "error", perr.Error())
		}
		images = append(images, models.ResolvedImage{RemotePath: path, DisplayURL: url})
	}

	return &Session{State: SessionLoaded, Note: note, Images: images}, nil
}

// Save writes the draft. The returned note reflects the stored document;
// image blob failures are reported through the ledger, not the error.
func (e *Editor) Save(ctx context.Context, draft *Draft) (*models.Note, error) {

	uploads, remotePaths, err := e.planUploads(ctx, draft.AddImages)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:          draft.BoundID,
		Title:       draft.Title,
		Description: draft.Description,
		Mood:        draft.Mood,
		Date:        draft.Date,
		Images:      append(append([]string{}, draft.KeepImages...), remotePaths...),
	}

	var saved *models.Note
	if draft.BoundID == "" {
		saved, err = e.store.Add(ctx, note)
	} else {
		if note.Date.IsZero() {
			existing, getErr := e.store.GetOne(ctx, draft.BoundID)
			if getErr != nil {
				return nil, getErr
			}
			note.Date = existing.Date
		}
		saved, err = e.store.Update(ctx, note)
	}
	if err != nil {
		return nil, err
	}

	// document is committed; blob work must not undo it
	e.runBlobTasks(ctx, followUps(uploads, draft.RemoveImages))

	return saved, nil
}

// Delete removes the note document and then its image blobs. Blob deletions
// that fail are recorded in the ledger.
func (e *Editor) Delete(ctx context.Context, id string) error {

	deleted, err := e.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	e.runBlobTasks(ctx, followUps(nil, deleted.Images))
	return nil
}

// followUps builds the blob task queue for one save: uploads first, then
// removals.
func followUps(uploads []plannedUpload, removals []string) []blobTask {
	tasks := make([]blobTask, 0, len(uploads)+len(removals))
	for i := range uploads {
		tasks = append(tasks, blobTask{upload: &uploads[i]})
	}
	for _, path := range removals {
		tasks = append(tasks, blobTask{remove: path})
	}
	return tasks
}

// planUploads assigns a remote path and presigned URL to every new image
// before the document is written, so the stored note references its final
// image paths.
func (e *Editor) planUploads(ctx context.Context, images []models.GalleryImage) ([]plannedUpload, []string, error) {

	var (
		uploads []plannedUpload
		paths   []string
	)

	for _, img := range images {
		contentType := contentTypeForURI(img.LocalURI)

		path, url, err := e.client.PresignUpload(ctx, img.LocalURI, contentType)
		if err != nil {
			return nil, nil, err
		}

		uploads = append(uploads, plannedUpload{
			remotePath:  path,
			localURI:    img.LocalURI,
			uploadURL:   url,
			contentType: contentType,
		})
		paths = append(paths, path)
	}

	return uploads, paths, nil
}

// runBlobTasks consumes the follow-up queue in order. Failures never
// propagate; they become ledger rows the drainer replays later.
func (e *Editor) runBlobTasks(ctx context.Context, tasks []blobTask) {
	for _, task := range tasks {
		if task.upload != nil {
			e.runUpload(ctx, *task.upload)
		} else {
			e.runRemove(ctx, task.remove)
		}
	}
}

func (e *Editor) runUpload(ctx context.Context, up plannedUpload) {
	if err := e.uploadOne(ctx, up); err != nil {
		e.logger.Warn(ctx, "Image upload failed, recorded for retry",
			"path", up.remotePath, "error", err.Error())

		// the presigned URL is kept as the transfer handle so a retry that
		// happens before it expires can reuse it
		if lerr := e.ledger.AddUpload(ctx, &models.PendingUpload{
			RemoteImagePath: up.remotePath,
			ImageURI:        up.localURI,
			SessionURI:      up.uploadURL,
		}); lerr != nil {
			e.logger.Error(ctx, "Failed to record pending upload", "error", lerr.Error())
		}
	}
}

func (e *Editor) uploadOne(ctx context.Context, up plannedUpload) error {
	f, err := openLocalFile(up.localURI)
	if err != nil {
		return err
	}
	defer f.Close()

	return e.client.UploadImage(ctx, up.uploadURL, f, up.contentType)
}

func (e *Editor) runRemove(ctx context.Context, path string) {
	err := e.client.DeleteImage(ctx, path)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return
	}

	e.logger.Warn(ctx, "Image delete failed, recorded for retry",
		"path", path, "error", err.Error())

	if lerr := e.ledger.AddDelete(ctx, &models.PendingDelete{RemoteImagePath: path}); lerr != nil {
		e.logger.Error(ctx, "Failed to record pending delete", "error", lerr.Error())
	}
}

func contentTypeForURI(uri string) string {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

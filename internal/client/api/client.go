// Package api implements the HTTP/websocket transport to the MoodNotes
// server, including transparent access-token refresh.
package api

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/models"
)

// NoteChange is one event on the live change feed.
type NoteChange struct {
	Action string `json:"action"` // added | updated | deleted | cleared
	NoteID string `json:"note_id,omitempty"`
}

// Client is the remote surface the rest of the client programs against.
type Client interface {
	Close() error

	// SignIn exchanges a federated identity token for a session and returns
	// the server-side user id.
	SignIn(ctx context.Context, identityToken string) (string, error)
	Logout()
	IsLoggedIn() bool
	UserID() string

	Ping(ctx context.Context) error

	GetNotes(ctx context.Context) ([]models.Note, error)
	GetNotesBetween(ctx context.Context, from, to time.Time) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	AddNote(ctx context.Context, note *models.Note) (*models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) (*models.Note, error)

	// DeleteNote returns the deleted document so callers can clean up its
	// image blobs.
	DeleteNote(ctx context.Context, id string) (*models.Note, error)
	DeleteAllNotes(ctx context.Context) error

	// PresignUpload returns the storage key assigned to the new image and a
	// presigned PUT URL for it.
	PresignUpload(ctx context.Context, fileName, contentType string) (string, string, error)

	// PresignUploadPath re-presigns an already assigned key for a retried
	// upload.
	PresignUploadPath(ctx context.Context, path string) (string, error)
	PresignDownload(ctx context.Context, path string) (string, error)
	ListImages(ctx context.Context) ([]string, error)
	DeleteImage(ctx context.Context, path string) error

	// UploadImage PUTs the body to a presigned URL.
	UploadImage(ctx context.Context, url string, body io.Reader, contentType string) error

	// Subscribe opens the live change feed. The returned channel closes when
	// ctx is cancelled or the connection drops.
	Subscribe(ctx context.Context) (<-chan NoteChange, error)
}

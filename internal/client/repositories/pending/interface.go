// Package pending stores the local ledger of blob operations that failed
// after their note document was already written. Rows survive restarts and
// are drained once connectivity returns.
package pending

import (
	"context"

	"github.com/dmitrijs2005/moodnotes/internal/client/models"
)

// Repository describes the ledger operations. Implementations are backed by
// the local SQLite database.
type Repository interface {
	// AddUpload records a failed upload. Re-recording the same remote path
	// overwrites the previous row.
	AddUpload(ctx context.Context, u *models.PendingUpload) error

	// SetSessionURI stores a resumable-transfer handle for a recorded upload.
	SetSessionURI(ctx context.Context, remoteImagePath, sessionURI string) error

	// ListUploads returns all recorded uploads.
	ListUploads(ctx context.Context) ([]*models.PendingUpload, error)

	// RemoveUpload deletes a recorded upload once it has been retried.
	RemoveUpload(ctx context.Context, remoteImagePath string) error

	// AddDelete records a failed remote deletion.
	AddDelete(ctx context.Context, d *models.PendingDelete) error

	// ListDeletes returns all recorded deletions.
	ListDeletes(ctx context.Context) ([]*models.PendingDelete, error)

	// RemoveDelete deletes a recorded deletion once it has been retried.
	RemoveDelete(ctx context.Context, remoteImagePath string) error
}

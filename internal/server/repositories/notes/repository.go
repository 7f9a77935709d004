package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/server/models"
)

// Repository describes owner-scoped persistence for notes. All reads are
// constrained by owner and returned newest-first; Update matches by id and
// owner and never inserts.
type Repository interface {
	// Create inserts a note and returns it with the store-assigned id.
	Create(ctx context.Context, note *models.Note) (*models.Note, error)

	// Update rewrites the note's editable fields. Returns ErrorNotFound if no
	// row matches (id, owner).
	Update(ctx context.Context, note *models.Note) error

	// GetByID returns a single note owned by ownerID.
	GetByID(ctx context.Context, id, ownerID string) (*models.Note, error)

	// Delete removes the note and returns the deleted row. The predicate is
	// additionally constrained by owner so a caller can never delete another
	// user's note even when it holds the identifier.
	Delete(ctx context.Context, id, ownerID string) (*models.Note, error)

	// DeleteAll removes every note owned by ownerID.
	DeleteAll(ctx context.Context, ownerID string) error

	// SelectByOwner returns all notes for ownerID sorted by date descending.
	SelectByOwner(ctx context.Context, ownerID string) ([]*models.Note, error)

	// SelectByOwnerBetween returns notes with from <= date < to, sorted by
	// date descending.
	SelectByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*models.Note, error)
}

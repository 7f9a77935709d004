package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/server/models"
)

// Repository stores opaque refresh tokens server-side so they can be rotated
// and revoked.
type Repository interface {
	Create(ctx context.Context, userID, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}

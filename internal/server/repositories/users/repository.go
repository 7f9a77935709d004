package users

import (
	"context"

	"github.com/dmitrijs2005/moodnotes/internal/server/models"
)

// Repository stores accounts keyed by the identity provider's subject.
type Repository interface {
	// Create inserts a user and returns it with the assigned id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetBySubject returns the user for a federated subject, or ErrorNotFound.
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
}

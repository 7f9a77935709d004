package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/moodnotes/internal/dbx"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repositories inside one transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notes(db dbx.DBTX) notes.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

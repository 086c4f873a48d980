package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/identity/internal/dbx"
	"github.com/dmitrijs2005/identity/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/identity/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/identity/internal/server/repositories/roles"
)

// RepositoryManager is the fixed set of repositories of the identity schema.
// Each constructor binds a repository to a DBTX, so the same manager serves
// plain reads and transactional writes.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Roles(db dbx.DBTX) roles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

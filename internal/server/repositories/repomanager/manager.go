// Package repomanager vends repository implementations bound to a DBTX,
// so services can obtain transactional repositories from the same manager.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chathub/internal/dbx"
	"github.com/dmitrijs2005/chathub/internal/server/repositories/files"
	"github.com/dmitrijs2005/chathub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
}

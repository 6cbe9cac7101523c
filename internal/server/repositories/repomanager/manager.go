package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/weatherdiary/internal/dbx"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/diaries"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/snapshots"
)

// RepositoryManager vends repositories bound to a DBTX so services can
// choose between the pool and an open transaction per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Snapshots(db dbx.DBTX) snapshots.Repository
	Diaries(db dbx.DBTX) diaries.Repository
}

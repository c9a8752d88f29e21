package data

import (
	"context"
	"database/sql"

	"github.com/guildtools/rosterd/internal/migrate"
)

// RunMigrations brings the schema up to date by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}

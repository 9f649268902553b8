// Package migrations holds the catalog schema history. Every migration
// registers itself with Migrations from an init function.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// NewMigrator returns a migrator over the catalog migrations.
func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}

// BringUpToDate creates the bookkeeping tables when needed and applies every
// pending migration as one group. The group ID is 0 when nothing ran.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

// Rollback reverts the most recently applied group. The group ID is 0 when
// there was nothing to roll back.
func Rollback(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	group, err := NewMigrator(db).Rollback(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestBringUpToDate(t *testing.T) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})
	ctx := context.Background()

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	for _, table := range []string{"authors", "genres", "books", "book_genres", "book_instances"} {
		var count int
		err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Scan(ctx, &count)
		require.NoError(t, err, table)
		assert.Equal(t, 0, count)
	}

	// running again is a no-op
	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)

	// and everything rolls back cleanly
	group, err = Rollback(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	ms, err := NewMigrator(db).MigrationsWithStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, ms.Unapplied(), len(ms))

	group, err = Rollback(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)
}

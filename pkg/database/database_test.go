package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/migrations"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// newTestDB opens a migrated file database so that the WAL and busy timeout
// pragmas apply.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "catalog.db")

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)
	return db
}

func TestNew_JournalMode(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

// Writers racing each other must never see "database is locked".
func TestNew_ConcurrentWrites(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	const numWorkers = 10
	const writesPerWorker = 20

	var wg sync.WaitGroup
	var errorCount atomic.Int32

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				author := &models.Author{
					CreatedAt:  time.Now(),
					UpdatedAt:  time.Now(),
					FirstName:  fmt.Sprintf("Writer %d", i),
					FamilyName: fmt.Sprintf("Worker %d", workerID),
				}
				if _, err := db.NewInsert().Model(author).Exec(ctx); err != nil {
					errorCount.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int32(0), errorCount.Load())

	count, err := db.NewSelect().Model((*models.Author)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, numWorkers*writesPerWorker, count)
}

func TestNew_BookGenresRelation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	genre := &models.Genre{Name: "Fantasy"}
	_, err := db.NewInsert().Model(genre).Exec(ctx)
	require.NoError(t, err)
	book := &models.Book{Title: "Earthsea", SortTitle: "Earthsea"}
	_, err = db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.BookGenre{BookID: book.ID, GenreID: genre.ID}).Exec(ctx)
	require.NoError(t, err)

	loaded := &models.Book{}
	err = db.NewSelect().Model(loaded).Relation("Genres").Where("b.id = ?", book.ID).Scan(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Genres, 1)
	assert.Equal(t, "Fantasy", loaded.Genres[0].Name)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.NewInsert().Model(&models.Genre{Name: "Fantasy"}).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&models.Genre{Name: "Fantasy"}).Exec(ctx)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(errors.WithStack(err)))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("disk I/O error")))
}

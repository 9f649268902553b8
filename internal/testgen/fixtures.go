package testgen

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/sortname"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func CreateGenre(t *testing.T, db *bun.DB, name string) *models.Genre {
	t.Helper()

	genre := &models.Genre{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Name:      name,
	}
	_, err := db.NewInsert().Model(genre).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return genre
}

func CreateAuthor(t *testing.T, db *bun.DB, firstName, familyName string) *models.Author {
	t.Helper()

	author := &models.Author{
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		FirstName:  firstName,
		FamilyName: familyName,
	}
	_, err := db.NewInsert().Model(author).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return author
}

// CreateBook inserts a book by author tagged with the given genres.
func CreateBook(t *testing.T, db *bun.DB, title string, authorID int, genreIDs ...int) *models.Book {
	t.Helper()
	ctx := context.Background()

	book := &models.Book{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Title:     title,
		SortTitle: sortname.ForTitle(title),
		AuthorID:  authorID,
		Summary:   "A summary of " + title + ".",
		ISBN:      "9780756404741",
		GenreIDs:  genreIDs,
	}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(ctx)
	require.NoError(t, err)

	for _, genreID := range genreIDs {
		_, err := db.NewInsert().Model(&models.BookGenre{BookID: book.ID, GenreID: genreID}).Exec(ctx)
		require.NoError(t, err)
	}
	return book
}

func CreateBookInstance(t *testing.T, db *bun.DB, bookID int, imprint, status string) *models.BookInstance {
	t.Helper()

	instance := &models.BookInstance{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		BookID:    bookID,
		Imprint:   imprint,
		Status:    status,
	}
	_, err := db.NewInsert().Model(instance).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return instance
}

// Count returns the number of rows in the model's table.
func Count(t *testing.T, db *bun.DB, model interface{}) int {
	t.Helper()

	n, err := db.NewSelect().Model(model).Count(context.Background())
	require.NoError(t, err)
	return n
}

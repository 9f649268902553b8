package testutils

import (
	"context"
	"database/sql"
	"net/http"
	"html"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/sortname"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createBookRequest is the request body for seeding a book. The author and
// genres are created when they don't exist yet. Text is escaped the same way
// the catalog forms escape it, so seeded records match submitted ones.
type createBookRequest struct {
	Title            string   `json:"title" mod:"trim,escape" validate:"required"`
	AuthorFirstName  string   `json:"author_first_name" mod:"trim,escape" validate:"required"`
	AuthorFamilyName string   `json:"author_family_name" mod:"trim,escape" validate:"required"`
	Genres           []string `json:"genres" mod:"dive,trim,escape" validate:"dive,required"`
	Copies           int      `json:"copies" validate:"min=0"`
}

type createBookResponse struct {
	BookID          int   `json:"book_id"`
	AuthorID        int   `json:"author_id"`
	GenreIDs        []int `json:"genre_ids"`
	BookInstanceIDs []int `json:"book_instance_ids"`
}

// createBook seeds a book with its author, genres, and available copies.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	resp := createBookResponse{GenreIDs: []int{}, BookInstanceIDs: []int{}}
	now := time.Now()

	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		author := &models.Author{}
		err := tx.NewSelect().
			Model(author).
			Where("first_name = ? AND family_name = ?", req.AuthorFirstName, req.AuthorFamilyName).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			author = &models.Author{
				CreatedAt:  now,
				UpdatedAt:  now,
				FirstName:  req.AuthorFirstName,
				FamilyName: req.AuthorFamilyName,
			}
			_, err = tx.NewInsert().Model(author).Returning("*").Exec(ctx)
		}
		if err != nil {
			return errors.Wrap(err, "failed to find or create author")
		}
		resp.AuthorID = author.ID

		book := &models.Book{
			CreatedAt: now,
			UpdatedAt: now,
			Title:     req.Title,
			SortTitle: sortname.ForTitle(html.UnescapeString(req.Title)),
			AuthorID:  author.ID,
		}
		_, err = tx.NewInsert().Model(book).Returning("*").Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to create book")
		}
		resp.BookID = book.ID

		for _, name := range req.Genres {
			genre := &models.Genre{}
			err := tx.NewSelect().Model(genre).Where("name = ?", name).Limit(1).Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				genre = &models.Genre{CreatedAt: now, UpdatedAt: now, Name: name}
				_, err = tx.NewInsert().Model(genre).Returning("*").Exec(ctx)
			}
			if err != nil {
				return errors.Wrap(err, "failed to find or create genre")
			}

			_, err = tx.NewInsert().
				Model(&models.BookGenre{BookID: book.ID, GenreID: genre.ID}).
				On("CONFLICT DO NOTHING").
				Exec(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to link genre")
			}
			resp.GenreIDs = append(resp.GenreIDs, genre.ID)
		}

		for i := 0; i < req.Copies; i++ {
			instance := &models.BookInstance{
				CreatedAt: now,
				UpdatedAt: now,
				BookID:    book.ID,
				Imprint:   "Test Imprint",
				Status:    models.BookInstanceStatusAvailable,
			}
			_, err := tx.NewInsert().Model(instance).Returning("*").Exec(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to create book instance")
			}
			resp.BookInstanceIDs = append(resp.BookInstanceIDs, instance.ID)
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusCreated, resp)
}

// deleteCatalogResponse is the number of rows deleted from each table.
type deleteCatalogResponse struct {
	Deleted map[string]int `json:"deleted"`
}

// deleteCatalog deletes every record, dependents first.
// DELETE /test/catalog.
func (h *handler) deleteCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	tables := []struct {
		name  string
		model interface{}
	}{
		{"book_instances", (*models.BookInstance)(nil)},
		{"book_genres", (*models.BookGenre)(nil)},
		{"books", (*models.Book)(nil)},
		{"genres", (*models.Genre)(nil)},
		{"authors", (*models.Author)(nil)},
	}

	resp := deleteCatalogResponse{Deleted: map[string]int{}}
	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range tables {
			result, err := tx.NewDelete().
				Model(table.model).
				Where("1=1").
				Exec(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to delete %s", table.name)
			}
			deleted, _ := result.RowsAffected()
			resp.Deleted[table.name] = int(deleted)
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, resp)
}

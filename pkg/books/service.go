package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts the candidate along with its genre links.
func (svc *Service) CreateBook(ctx context.Context, candidate models.Book) (*models.Book, error) {
	book := &candidate
	now := time.Now()
	book.ID = 0
	book.CreatedAt = now
	book.UpdatedAt = now

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return insertGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrieveBook(ctx, book.ID)
}

// RetrieveBook loads a book with its author and genres.
func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Genres", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("g.name ASC")
		}).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// FindBook is RetrieveBook without the NotFound: a missing book is nil.
func (svc *Service) FindBook(ctx context.Context, id int) (*models.Book, error) {
	book, err := svc.RetrieveBook(ctx, id)
	if errors.Is(err, errcodes.NotFound("Book")) {
		return nil, nil
	}
	return book, err
}

// ListBooks returns every book with its author, ordered by sort title.
func (svc *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Order("b.sort_title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

// UpdateBook replaces the stored book that has the candidate's ID, including
// its genre links.
func (svc *Service) UpdateBook(ctx context.Context, candidate models.Book) (*models.Book, error) {
	book := &candidate
	book.UpdatedAt = time.Now()

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(book).
			Column("title", "sort_title", "author_id", "summary", "isbn", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Book")
		}

		// Delete all previous genre links and save the new ones.
		_, err = tx.
			NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("book_id = ?", book.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return insertGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrieveBook(ctx, book.ID)
}

// DeleteBook deletes a book together with its genre links and copies.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.BookInstance)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// ListInstances returns the copies of a book.
func (svc *Service) ListInstances(ctx context.Context, bookID int) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}

	err := svc.db.NewSelect().
		Model(&instances).
		Where("bi.book_id = ?", bookID).
		Order("bi.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return instances, nil
}

func (svc *Service) CountBooks(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}

func insertGenres(ctx context.Context, tx bun.Tx, bookID int, genreIDs []int) error {
	links := make([]*models.BookGenre, 0, len(genreIDs))
	seen := map[int]bool{}
	for _, genreID := range genreIDs {
		if seen[genreID] {
			continue
		}
		seen[genreID] = true
		links = append(links, &models.BookGenre{BookID: bookID, GenreID: genreID})
	}
	if len(links) == 0 {
		return nil
	}

	_, err := tx.
		NewInsert().
		Model(&links).
		Exec(ctx)
	return errors.WithStack(err)
}

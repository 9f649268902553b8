package authors

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

func (svc *Service) CreateAuthor(ctx context.Context, candidate models.Author) (*models.Author, error) {
	author := &candidate
	now := time.Now()
	author.ID = 0
	author.CreatedAt = now
	author.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return author, nil
}

func (svc *Service) RetrieveAuthor(ctx context.Context, id int) (*models.Author, error) {
	author := &models.Author{}

	err := svc.db.
		NewSelect().
		Model(author).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

// FindAuthor is RetrieveAuthor without the NotFound: a missing author is nil.
func (svc *Service) FindAuthor(ctx context.Context, id int) (*models.Author, error) {
	author, err := svc.RetrieveAuthor(ctx, id)
	if errors.Is(err, errcodes.NotFound("Author")) {
		return nil, nil
	}
	return author, err
}

func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}

	err := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.family_name ASC", "a.first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return authors, nil
}

// UpdateAuthor replaces every field of the stored author that has the
// candidate's ID. Unset dates are cleared.
func (svc *Service) UpdateAuthor(ctx context.Context, candidate models.Author) (*models.Author, error) {
	author := &candidate
	author.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(author).
		Column("first_name", "family_name", "date_of_birth", "date_of_death", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errcodes.NotFound("Author")
	}

	return svc.RetrieveAuthor(ctx, author.ID)
}

// DeleteAuthor deletes an author. Callers check for books by the author first.
func (svc *Service) DeleteAuthor(ctx context.Context, authorID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", authorID).
		Exec(ctx)
	return errors.WithStack(err)
}

// ListBooks returns the books written by the author.
func (svc *Service) ListBooks(ctx context.Context, authorID int) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.NewSelect().
		Model(&books).
		Where("b.author_id = ?", authorID).
		Order("b.sort_title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

func (svc *Service) CountAuthors(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Author)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}

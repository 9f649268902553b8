package genres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/database"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveGenreOptions struct {
	ID   *int
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateGenre inserts the candidate and returns the stored record. A name that
// was taken between the caller's existence check and the insert comes back as
// a Conflict carrying the existing genre's ID.
func (svc *Service) CreateGenre(ctx context.Context, candidate models.Genre) (*models.Genre, error) {
	genre := &candidate
	now := time.Now()
	genre.ID = 0
	genre.CreatedAt = now
	genre.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(genre).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, svc.conflict(ctx, candidate.Name)
		}
		return nil, errors.WithStack(err)
	}
	return genre, nil
}

// FindGenre is RetrieveGenre without the NotFound: a missing genre is nil.
func (svc *Service) FindGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre, err := svc.RetrieveGenre(ctx, opts)
	if errors.Is(err, errcodes.NotFound("Genre")) {
		return nil, nil
	}
	return genre, err
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre)

	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("g.name = ?", *opts.Name)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(err)
	}

	return genre, nil
}

func (svc *Service) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	genres := []*models.Genre{}

	err := svc.db.
		NewSelect().
		Model(&genres).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return genres, nil
}

// UpdateGenre replaces the stored genre that has the candidate's ID.
func (svc *Service) UpdateGenre(ctx context.Context, candidate models.Genre) (*models.Genre, error) {
	genre := &candidate
	genre.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(genre).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, svc.conflict(ctx, candidate.Name)
		}
		return nil, errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errcodes.NotFound("Genre")
	}

	return svc.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &genre.ID})
}

// DeleteGenre deletes a genre. Callers check for books in the genre first.
func (svc *Service) DeleteGenre(ctx context.Context, genreID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.Genre)(nil)).
		Where("id = ?", genreID).
		Exec(ctx)
	return errors.WithStack(err)
}

// ListBooks returns all books with this genre.
func (svc *Service) ListBooks(ctx context.Context, genreID int) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.NewSelect().
		Model(&books).
		Join("INNER JOIN book_genres bg ON bg.book_id = b.id").
		Where("bg.genre_id = ?", genreID).
		Order("b.sort_title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) CountGenres(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Genre)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}

func (svc *Service) conflict(ctx context.Context, name string) error {
	existing, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
	if err != nil {
		return err
	}
	return errcodes.Conflict("Genre", name, existing.ID)
}

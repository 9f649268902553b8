package bookinstances

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/uptrace/bun"
)

type CountBookInstancesOptions struct {
	Status *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBookInstance(ctx context.Context, candidate models.BookInstance) (*models.BookInstance, error) {
	instance := &candidate
	now := time.Now()
	instance.ID = 0
	instance.CreatedAt = now
	instance.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(instance).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return instance, nil
}

// RetrieveBookInstance loads a copy with its book.
func (svc *Service) RetrieveBookInstance(ctx context.Context, id int) (*models.BookInstance, error) {
	instance := &models.BookInstance{}

	err := svc.db.
		NewSelect().
		Model(instance).
		Relation("Book").
		Where("bi.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("BookInstance")
		}
		return nil, errors.WithStack(err)
	}

	return instance, nil
}

// FindBookInstance is RetrieveBookInstance without the NotFound: a missing
// copy is nil.
func (svc *Service) FindBookInstance(ctx context.Context, id int) (*models.BookInstance, error) {
	instance, err := svc.RetrieveBookInstance(ctx, id)
	if errors.Is(err, errcodes.NotFound("BookInstance")) {
		return nil, nil
	}
	return instance, err
}

// ListBookInstances returns copies with their books, ordered by book title.
func (svc *Service) ListBookInstances(ctx context.Context) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}

	err := svc.db.
		NewSelect().
		Model(&instances).
		Relation("Book").
		Order("book.title ASC", "bi.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return instances, nil
}

// UpdateBookInstance replaces every field of the stored copy that has the
// candidate's ID.
func (svc *Service) UpdateBookInstance(ctx context.Context, candidate models.BookInstance) (*models.BookInstance, error) {
	instance := &candidate
	instance.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(instance).
		Column("book_id", "imprint", "status", "due_back", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errcodes.NotFound("BookInstance")
	}

	return svc.RetrieveBookInstance(ctx, instance.ID)
}

func (svc *Service) DeleteBookInstance(ctx context.Context, id int) error {
	_, err := svc.db.NewDelete().
		Model((*models.BookInstance)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) CountBookInstances(ctx context.Context, opts CountBookInstancesOptions) (int, error) {
	q := svc.db.NewSelect().
		Model((*models.BookInstance)(nil))

	if opts.Status != nil {
		q = q.Where("bi.status = ?", *opts.Status)
	}

	count, err := q.Count(ctx)
	return count, errors.WithStack(err)
}

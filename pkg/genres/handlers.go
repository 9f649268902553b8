package genres

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/aggregate"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/metrics"
	"github.com/shishobooks/locallibrary/pkg/models"
)

const (
	viewList   = "genre_list"
	viewDetail = "genre_detail"
	viewForm   = "genre_form"
	viewDelete = "genre_delete"
)

type handler struct {
	genreService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	genres, err := h.genreService.ListGenres(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewList, echo.Map{
		"title":      "Genre List",
		"genre_list": genres,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	genre, books, err := h.genreWithBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if genre == nil {
		return errcodes.NotFound("Genre")
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDetail, echo.Map{
		"title":       "Genre Detail",
		"genre":       genre,
		"genre_books": books,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title": "Create Genre",
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := GenrePayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.Genre(0)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityGenre)
		return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
			"title":  "Create Genre",
			"genre":  &candidate,
			"errors": violations,
		}))
	}

	existing, err := h.genreService.FindGenre(ctx, RetrieveGenreOptions{Name: &candidate.Name})
	if err != nil {
		return errors.WithStack(err)
	}
	if existing != nil {
		log.Info("genre already exists", logger.Data{"genre_id": existing.ID})
		return errors.WithStack(c.Redirect(http.StatusFound, existing.URL()))
	}

	genre, err := h.genreService.CreateGenre(ctx, candidate)
	if err != nil {
		// lost the race to another create with the same name
		var e *errcodes.Error
		if errcodes.KindOf(err) == errcodes.KindConflict && errors.As(err, &e) {
			log.Info("genre created concurrently", logger.Data{"genre_id": e.ConflictingID})
			return errors.WithStack(c.Redirect(http.StatusFound, models.GenreURL(e.ConflictingID)))
		}
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityGenre, metrics.OperationCreate)

	return errors.WithStack(c.Redirect(http.StatusFound, genre.URL()))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title": "Update Genre",
		"genre": genre,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	params := GenrePayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.Genre(id)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityGenre)
		return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
			"title":  "Update Genre",
			"genre":  &candidate,
			"errors": violations,
		}))
	}

	existing, err := h.genreService.FindGenre(ctx, RetrieveGenreOptions{Name: &candidate.Name})
	if err != nil {
		return errors.WithStack(err)
	}
	if existing != nil && existing.ID != id {
		return errcodes.Conflict("Genre", candidate.Name, existing.ID)
	}

	genre, err := h.genreService.UpdateGenre(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityGenre, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusFound, genre.URL()))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.GenreListPath))
	}

	genre, books, err := h.genreWithBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if genre == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.GenreListPath))
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDelete, echo.Map{
		"title":       "Delete Genre",
		"genre":       genre,
		"genre_books": books,
	}))
}

func (h *handler) deleteGenre(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := DeleteGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	id, err := strconv.Atoi(params.GenreID)
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.GenreListPath))
	}

	genre, books, err := h.genreWithBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if genre == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.GenreListPath))
	}

	if len(books) > 0 {
		log.Info("genre still has books", logger.Data{"genre_id": id, "book_count": len(books)})
		metrics.RecordBlockedDelete(metrics.EntityGenre)
		return errors.WithStack(c.Render(http.StatusOK, viewDelete, echo.Map{
			"title":       "Delete Genre",
			"genre":       genre,
			"genre_books": books,
		}))
	}

	err = h.genreService.DeleteGenre(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityGenre, metrics.OperationDelete)

	return errors.WithStack(c.Redirect(http.StatusFound, models.GenreListPath))
}

// genreWithBooks looks up a genre and the books in it concurrently. The genre
// is nil when it doesn't exist.
func (h *handler) genreWithBooks(ctx context.Context, id int) (*models.Genre, []*models.Book, error) {
	results, err := aggregate.New().
		Add("genre", aggregate.Fetch(func(ctx context.Context) (*models.Genre, error) {
			return h.genreService.FindGenre(ctx, RetrieveGenreOptions{ID: &id})
		})).
		Add("genre_books", aggregate.Fetch(func(ctx context.Context) ([]*models.Book, error) {
			return h.genreService.ListBooks(ctx, id)
		})).
		Wait(ctx)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return aggregate.Get[*models.Genre](results, "genre"), aggregate.Get[[]*models.Book](results, "genre_books"), nil
}

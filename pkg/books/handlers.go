package books

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/aggregate"
	"github.com/shishobooks/locallibrary/pkg/authors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/genres"
	"github.com/shishobooks/locallibrary/pkg/metrics"
	"github.com/shishobooks/locallibrary/pkg/models"
)

const (
	viewList   = "book_list"
	viewDetail = "book_detail"
	viewForm   = "book_form"
	viewDelete = "book_delete"
)

type handler struct {
	bookService   *Service
	authorService *authors.Service
	genreService  *genres.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewList, echo.Map{
		"title":     "Book List",
		"book_list": books,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, instances, err := h.bookWithInstances(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if book == nil {
		return errcodes.NotFound("Book")
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDetail, echo.Map{
		"title":          book.Title,
		"book":           book,
		"book_instances": instances,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	ctx := c.Request().Context()

	authorList, err := h.authorService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	genreList, err := h.genreService.ListGenres(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":   "Create Book",
		"authors": authorList,
		"genres":  genreList,
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.Book(0)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityBook)
		return h.renderRejected(c, "Create Book", &candidate, violations)
	}

	book, err := h.bookService.CreateBook(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityBook, metrics.OperationCreate)

	return errors.WithStack(c.Redirect(http.StatusFound, book.URL()))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	results, err := aggregate.New().
		Add("book", aggregate.Fetch(func(ctx context.Context) (*models.Book, error) {
			return h.bookService.FindBook(ctx, id)
		})).
		Add("authors", aggregate.Fetch(h.authorService.ListAuthors)).
		Add("genres", aggregate.Fetch(h.genreService.ListGenres)).
		Wait(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	book := aggregate.Get[*models.Book](results, "book")
	if book == nil {
		return errcodes.NotFound("Book")
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":   "Update Book",
		"book":    book,
		"authors": results["authors"],
		"genres":  results["genres"],
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := BookPayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.Book(id)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityBook)
		return h.renderRejected(c, "Update Book", &candidate, violations)
	}

	book, err := h.bookService.UpdateBook(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityBook, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusFound, book.URL()))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookListPath))
	}

	book, instances, err := h.bookWithInstances(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if book == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookListPath))
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDelete, echo.Map{
		"title":          "Delete Book",
		"book":           book,
		"book_instances": instances,
	}))
}

// deleteBook removes the book along with its copies. Unlike genres and
// authors, existing copies don't block the deletion.
func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := DeleteBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	id, err := strconv.Atoi(params.BookID)
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookListPath))
	}

	book, instances, err := h.bookWithInstances(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if book == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookListPath))
	}

	if len(instances) > 0 {
		log.Info("deleting book with copies", logger.Data{"book_id": id, "instance_count": len(instances)})
	}

	err = h.bookService.DeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityBook, metrics.OperationDelete)

	return errors.WithStack(c.Redirect(http.StatusFound, models.BookListPath))
}

func (h *handler) renderRejected(c echo.Context, title string, candidate *models.Book, violations []errcodes.Violation) error {
	ctx := c.Request().Context()

	results, err := aggregate.New().
		Add("authors", aggregate.Fetch(h.authorService.ListAuthors)).
		Add("genres", aggregate.Fetch(h.genreService.ListGenres)).
		Wait(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":   title,
		"book":    candidate,
		"authors": results["authors"],
		"genres":  results["genres"],
		"errors":  violations,
	}))
}

func (h *handler) bookWithInstances(ctx context.Context, id int) (*models.Book, []*models.BookInstance, error) {
	results, err := aggregate.New().
		Add("book", aggregate.Fetch(func(ctx context.Context) (*models.Book, error) {
			return h.bookService.FindBook(ctx, id)
		})).
		Add("book_instances", aggregate.Fetch(func(ctx context.Context) ([]*models.BookInstance, error) {
			return h.bookService.ListInstances(ctx, id)
		})).
		Wait(ctx)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return aggregate.Get[*models.Book](results, "book"), aggregate.Get[[]*models.BookInstance](results, "book_instances"), nil
}

package authors

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
	viewList   = "author_list"
	viewDetail = "author_detail"
	viewForm   = "author_form"
	viewDelete = "author_delete"
)

type handler struct {
	authorService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewList, echo.Map{
		"title":       "Author List",
		"author_list": authors,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, books, err := h.authorWithBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if author == nil {
		return errcodes.NotFound("Author")
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDetail, echo.Map{
		"title":        "Author Detail",
		"author":       author,
		"author_books": books,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title": "Create Author",
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := AuthorPayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.Author(0)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityAuthor)
		return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
			"title":  "Create Author",
			"author": &candidate,
			"errors": violations,
		}))
	}

	author, err := h.authorService.CreateAuthor(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityAuthor, metrics.OperationCreate)

	return errors.WithStack(c.Redirect(http.StatusFound, author.URL()))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":  "Update Author",
		"author": author,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := AuthorPayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.Author(id)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityAuthor)
		return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
			"title":  "Update Author",
			"author": &candidate,
			"errors": violations,
		}))
	}

	author, err := h.authorService.UpdateAuthor(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityAuthor, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusFound, author.URL()))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorListPath))
	}

	author, books, err := h.authorWithBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if author == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorListPath))
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDelete, echo.Map{
		"title":        "Delete Author",
		"author":       author,
		"author_books": books,
	}))
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := DeleteAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	id, err := strconv.Atoi(params.AuthorID)
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorListPath))
	}

	author, books, err := h.authorWithBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if author == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorListPath))
	}

	if len(books) > 0 {
		log.Info("author still has books", logger.Data{"author_id": id, "book_count": len(books)})
		metrics.RecordBlockedDelete(metrics.EntityAuthor)
		return errors.WithStack(c.Render(http.StatusOK, viewDelete, echo.Map{
			"title":        "Delete Author",
			"author":       author,
			"author_books": books,
		}))
	}

	err = h.authorService.DeleteAuthor(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityAuthor, metrics.OperationDelete)

	return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorListPath))
}

func (h *handler) authorWithBooks(ctx context.Context, id int) (*models.Author, []*models.Book, error) {
	results, err := aggregate.New().
		Add("author", aggregate.Fetch(func(ctx context.Context) (*models.Author, error) {
			return h.authorService.FindAuthor(ctx, id)
		})).
		Add("author_books", aggregate.Fetch(func(ctx context.Context) ([]*models.Book, error) {
			return h.authorService.ListBooks(ctx, id)
		})).
		Wait(ctx)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return aggregate.Get[*models.Author](results, "author"), aggregate.Get[[]*models.Book](results, "author_books"), nil
}

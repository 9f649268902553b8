package bookinstances

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/aggregate"
	"github.com/shishobooks/locallibrary/pkg/books"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/metrics"
	"github.com/shishobooks/locallibrary/pkg/models"
)

const (
	viewList   = "bookinstance_list"
	viewDetail = "bookinstance_detail"
	viewForm   = "bookinstance_form"
	viewDelete = "bookinstance_delete"
)

type handler struct {
	instanceService *Service
	bookService     *books.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	instances, err := h.instanceService.ListBookInstances(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewList, echo.Map{
		"title":             "Book Instance List",
		"bookinstance_list": instances,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("BookInstance")
	}

	instance, err := h.instanceService.RetrieveBookInstance(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDetail, echo.Map{
		"title":        "Book Instance Detail",
		"bookinstance": instance,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	ctx := c.Request().Context()

	bookList, err := h.bookService.ListBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":     "Create Book Instance",
		"book_list": bookList,
		"statuses":  models.BookInstanceStatuses,
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookInstancePayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.BookInstance(0)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityBookInstance)
		return h.renderRejected(c, "Create Book Instance", &candidate, violations)
	}

	instance, err := h.instanceService.CreateBookInstance(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityBookInstance, metrics.OperationCreate)

	return errors.WithStack(c.Redirect(http.StatusFound, instance.URL()))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("BookInstance")
	}

	results, err := aggregate.New().
		Add("bookinstance", aggregate.Fetch(func(ctx context.Context) (*models.BookInstance, error) {
			return h.instanceService.FindBookInstance(ctx, id)
		})).
		Add("book_list", aggregate.Fetch(h.bookService.ListBooks)).
		Wait(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	instance := aggregate.Get[*models.BookInstance](results, "bookinstance")
	if instance == nil {
		return errcodes.NotFound("BookInstance")
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":        "Update Book Instance",
		"bookinstance": instance,
		"book_list":    results["book_list"],
		"statuses":     models.BookInstanceStatuses,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("BookInstance")
	}

	params := BookInstancePayload{}
	violations, err := errcodes.Violations(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	candidate := params.BookInstance(id)

	if len(violations) > 0 {
		metrics.RecordRejected(metrics.EntityBookInstance)
		return h.renderRejected(c, "Update Book Instance", &candidate, violations)
	}

	instance, err := h.instanceService.UpdateBookInstance(ctx, candidate)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityBookInstance, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusFound, instance.URL()))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookInstanceListPath))
	}

	instance, err := h.instanceService.FindBookInstance(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if instance == nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookInstanceListPath))
	}

	return errors.WithStack(c.Render(http.StatusOK, viewDelete, echo.Map{
		"title":        "Delete Book Instance",
		"bookinstance": instance,
	}))
}

// deleteBookInstance has nothing to guard: no other record refers to a copy.
func (h *handler) deleteBookInstance(c echo.Context) error {
	ctx := c.Request().Context()

	params := DeleteBookInstancePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	id, err := strconv.Atoi(params.BookInstanceID)
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, models.BookInstanceListPath))
	}

	err = h.instanceService.DeleteBookInstance(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordMutation(metrics.EntityBookInstance, metrics.OperationDelete)

	return errors.WithStack(c.Redirect(http.StatusFound, models.BookInstanceListPath))
}

func (h *handler) renderRejected(c echo.Context, title string, candidate *models.BookInstance, violations []errcodes.Violation) error {
	bookList, err := h.bookService.ListBooks(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, viewForm, echo.Map{
		"title":        title,
		"bookinstance": candidate,
		"book_list":    bookList,
		"statuses":     models.BookInstanceStatuses,
		"errors":       violations,
	}))
}

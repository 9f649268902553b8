package bookinstances

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/internal/testgen"
	"github.com/shishobooks/locallibrary/pkg/books"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestHandler(t *testing.T) (*handler, *bun.DB, *echo.Echo, *testgen.Renderer) {
	t.Helper()
	db := testgen.NewDB(t)
	e, r := testgen.NewEcho(t)
	h := &handler{
		instanceService: NewService(db),
		bookService:     books.NewService(db),
	}
	return h, db, e, r
}

func newBook(t *testing.T, db *bun.DB, title string) *models.Book {
	t.Helper()
	author := testgen.CreateAuthor(t, db, "Patrick", "Rothfuss")
	return testgen.CreateBook(t, db, title, author.ID)
}

func TestHandler_List_SortedByBookTitle(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	wind := newBook(t, db, "The Name of the Wind")
	fear := newBook(t, db, "Lavinia")
	testgen.CreateBookInstance(t, db, wind.ID, "DAW, 2007", models.BookInstanceStatusAvailable)
	testgen.CreateBookInstance(t, db, fear.ID, "Harcourt, 2008", models.BookInstanceStatusLoaned)

	c, _ := testgen.NewContext(e, http.MethodGet, models.BookInstanceListPath, nil)
	require.NoError(t, h.list(c))

	instances := r.Last(t).Data["bookinstance_list"].([]*models.BookInstance)
	require.Len(t, instances, 2)
	assert.Equal(t, "Lavinia", instances[0].Book.Title)
	assert.Equal(t, "The Name of the Wind", instances[1].Book.Title)
}

func TestHandler_Create_DefaultsStatus(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	book := newBook(t, db, "The Name of the Wind")

	form := url.Values{"book": {strconv.Itoa(book.ID)}, "imprint": {"DAW, 2007"}}
	c, rec := testgen.NewContext(e, http.MethodPost, "/catalog/bookinstance/create", form)
	require.NoError(t, h.create(c))
	location := testgen.Location(t, rec)

	instances, err := h.instanceService.ListBookInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, instances[0].URL(), location)
	assert.Equal(t, models.BookInstanceStatusMaintenance, instances[0].Status)
	assert.Nil(t, instances[0].DueBack)
}

func TestHandler_Create(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	book := newBook(t, db, "The Name of the Wind")

	form := url.Values{
		"book":     {strconv.Itoa(book.ID)},
		"imprint":  {"DAW, 2007"},
		"status":   {"Loaned"},
		"due_back": {"2026-11-01"},
	}
	c, rec := testgen.NewContext(e, http.MethodPost, "/catalog/bookinstance/create", form)
	require.NoError(t, h.create(c))
	testgen.Location(t, rec)

	instances, err := h.instanceService.ListBookInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, models.BookInstanceStatusLoaned, instances[0].Status)
	assert.Equal(t, "2026-11-01", models.FormatDate(instances[0].DueBack))
	assert.Equal(t, "November 1, 2026", instances[0].DueBackFormatted())
}

func TestHandler_Create_Rejected(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	newBook(t, db, "The Name of the Wind")

	form := url.Values{
		"book":     {""},
		"imprint":  {" "},
		"status":   {"Lost"},
		"due_back": {"soon"},
	}
	c, rec := testgen.NewContext(e, http.MethodPost, "/catalog/bookinstance/create", form)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	render := r.Last(t)
	assert.Equal(t, viewForm, render.Name)
	violations := render.Data["errors"].([]errcodes.Violation)
	fields := []string{}
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"book", "imprint", "status", "due_back"}, fields)

	candidate := render.Data["bookinstance"].(*models.BookInstance)
	assert.Equal(t, "Lost", candidate.Status)
	assert.Nil(t, candidate.DueBack)
	assert.Len(t, render.Data["book_list"].([]*models.Book), 1)
	assert.Equal(t, models.BookInstanceStatuses, render.Data["statuses"])
	assert.Equal(t, 0, testgen.Count(t, db, (*models.BookInstance)(nil)))
}

func TestHandler_Retrieve(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	book := newBook(t, db, "The Name of the Wind")
	instance := testgen.CreateBookInstance(t, db, book.ID, "DAW, 2007", models.BookInstanceStatusAvailable)

	c, _ := testgen.NewContext(e, http.MethodGet, instance.URL(), nil, "id", strconv.Itoa(instance.ID))
	require.NoError(t, h.retrieve(c))

	render := r.Last(t)
	assert.Equal(t, viewDetail, render.Name)
	assert.Equal(t, "The Name of the Wind", render.Data["bookinstance"].(*models.BookInstance).Book.Title)

	c, _ = testgen.NewContext(e, http.MethodGet, "/catalog/bookinstance/999", nil, "id", "999")
	err := h.retrieve(c)
	assert.Equal(t, errcodes.KindNotFound, errcodes.KindOf(err))
}

func TestHandler_UpdateForm(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	book := newBook(t, db, "The Name of the Wind")
	instance := testgen.CreateBookInstance(t, db, book.ID, "DAW, 2007", models.BookInstanceStatusAvailable)

	c, _ := testgen.NewContext(e, http.MethodGet, instance.URL()+"/update", nil, "id", strconv.Itoa(instance.ID))
	require.NoError(t, h.updateForm(c))

	render := r.Last(t)
	assert.Equal(t, instance.ID, render.Data["bookinstance"].(*models.BookInstance).ID)
	assert.Len(t, render.Data["book_list"].([]*models.Book), 1)

	c, _ = testgen.NewContext(e, http.MethodGet, "/catalog/bookinstance/999/update", nil, "id", "999")
	err := h.updateForm(c)
	assert.Equal(t, errcodes.KindNotFound, errcodes.KindOf(err))
}

func TestHandler_Update(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	book := newBook(t, db, "The Name of the Wind")
	instance := testgen.CreateBookInstance(t, db, book.ID, "DAW, 2007", models.BookInstanceStatusLoaned)

	form := url.Values{"book": {strconv.Itoa(book.ID)}, "imprint": {"DAW, 2009"}, "status": {"Available"}}
	c, rec := testgen.NewContext(e, http.MethodPost, instance.URL()+"/update", form, "id", strconv.Itoa(instance.ID))
	require.NoError(t, h.update(c))
	assert.Equal(t, instance.URL(), testgen.Location(t, rec))

	updated, err := h.instanceService.RetrieveBookInstance(context.Background(), instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "DAW, 2009", updated.Imprint)
	assert.True(t, updated.IsAvailable())
	assert.Equal(t, 1, testgen.Count(t, db, (*models.BookInstance)(nil)))
}

func TestHandler_DeleteForm_MissingRedirectsToList(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)

	c, rec := testgen.NewContext(e, http.MethodGet, "/catalog/bookinstance/999/delete", nil, "id", "999")
	require.NoError(t, h.deleteForm(c))
	assert.Equal(t, models.BookInstanceListPath, testgen.Location(t, rec))
}

func TestHandler_Delete(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	book := newBook(t, db, "The Name of the Wind")
	instance := testgen.CreateBookInstance(t, db, book.ID, "DAW, 2007", models.BookInstanceStatusAvailable)

	id := strconv.Itoa(instance.ID)
	c, rec := testgen.NewContext(e, http.MethodPost, instance.URL()+"/delete", url.Values{"bookinstanceid": {id}}, "id", id)
	require.NoError(t, h.deleteBookInstance(c))
	assert.Equal(t, models.BookInstanceListPath, testgen.Location(t, rec))
	assert.Equal(t, 0, testgen.Count(t, db, (*models.BookInstance)(nil)))
	assert.Equal(t, 1, testgen.Count(t, db, (*models.Book)(nil)))
}

func TestCountBookInstances(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)

	book := newBook(t, db, "The Name of the Wind")
	testgen.CreateBookInstance(t, db, book.ID, "DAW, 2007", models.BookInstanceStatusAvailable)
	testgen.CreateBookInstance(t, db, book.ID, "DAW, 2008", models.BookInstanceStatusLoaned)

	total, err := svc.CountBookInstances(context.Background(), CountBookInstancesOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	status := models.BookInstanceStatusAvailable
	available, err := svc.CountBookInstances(context.Background(), CountBookInstancesOptions{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, available)
}

package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/internal/testgen"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestEcho(t *testing.T) (*echo.Echo, *bun.DB) {
	t.Helper()
	db := testgen.NewDB(t)
	e, err := NewEcho(config.NewForTest(), db)
	require.NoError(t, err)
	return e, db
}

func TestServer_RootRedirectsToCatalog(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := testgen.Serve(e, http.MethodGet, "/", nil)
	assert.Equal(t, models.CatalogPath, testgen.Location(t, rec))

	rec = testgen.Serve(e, http.MethodGet, models.CatalogPath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Local Library Home")
	assert.Contains(t, rec.Body.String(), "<strong>Books:</strong> 0")
}

func TestServer_UnknownPage(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := testgen.Serve(e, http.MethodGet, "/catalog/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found.")

	rec = testgen.Serve(e, http.MethodGet, "/catalog/genre/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Genre not found.")
}

func TestServer_RejectedFormRendersErrors(t *testing.T) {
	t.Parallel()
	e, db := newTestEcho(t)

	rec := testgen.Serve(e, http.MethodPost, "/catalog/genre/create", url.Values{"name": {"  "}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="errors"`)
	assert.Equal(t, 0, testgen.Count(t, db, (*models.Genre)(nil)))
}

func TestServer_GuardedGenreDelete(t *testing.T) {
	t.Parallel()
	e, db := newTestEcho(t)

	rec := testgen.Serve(e, http.MethodPost, "/catalog/genre/create", url.Values{"name": {"Fantasy"}})
	genreURL := testgen.Location(t, rec)
	genreID := strings.TrimPrefix(genreURL, "/catalog/genre/")

	rec = testgen.Serve(e, http.MethodPost, "/catalog/genre/create", url.Values{"name": {" Fantasy "}})
	assert.Equal(t, genreURL, testgen.Location(t, rec))

	rec = testgen.Serve(e, http.MethodPost, "/catalog/author/create", url.Values{
		"first_name":  {"Patrick"},
		"family_name": {"Rothfuss"},
	})
	authorID := strings.TrimPrefix(testgen.Location(t, rec), "/catalog/author/")

	rec = testgen.Serve(e, http.MethodPost, "/catalog/book/create", url.Values{
		"title":   {"The Name of the Wind"},
		"author":  {authorID},
		"summary": {"A young man grows up to be a legend."},
		"isbn":    {"9780756404741"},
		"genre":   {genreID},
	})
	bookURL := testgen.Location(t, rec)
	bookID := strings.TrimPrefix(bookURL, "/catalog/book/")

	rec = testgen.Serve(e, http.MethodGet, bookURL, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rothfuss, Patrick")
	assert.Contains(t, rec.Body.String(), "Fantasy")

	rec = testgen.Serve(e, http.MethodPost, genreURL+"/delete", url.Values{"genreid": {genreID}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Delete the following books")
	assert.Equal(t, 1, testgen.Count(t, db, (*models.Genre)(nil)))

	rec = testgen.Serve(e, http.MethodPost, bookURL+"/delete", url.Values{"bookid": {bookID}})
	assert.Equal(t, models.BookListPath, testgen.Location(t, rec))

	rec = testgen.Serve(e, http.MethodPost, genreURL+"/delete", url.Values{"genreid": {genreID}})
	assert.Equal(t, models.GenreListPath, testgen.Location(t, rec))
	assert.Equal(t, 0, testgen.Count(t, db, (*models.Genre)(nil)))

	rec = testgen.Serve(e, http.MethodGet, genreURL, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_TestRoutesOnlyInTestEnvironment(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)

	cfg := config.NewForTest()
	cfg.Environment = "production"
	e, err := NewEcho(cfg, db)
	require.NoError(t, err)

	rec := testgen.Serve(e, http.MethodDelete, "/test/catalog", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	e, _ = newTestEcho(t)
	rec = testgen.Serve(e, http.MethodDelete, "/test/catalog", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_MetricsCountMutations(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := testgen.Serve(e, http.MethodPost, "/catalog/genre/create", url.Values{"name": {"Poetry"}})
	testgen.Location(t, rec)

	rec = testgen.Serve(e, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_mutations_total{entity="genre",operation="create"}`)
}

func TestServer_SeededMarkupRendersEscaped(t *testing.T) {
	t.Parallel()
	e, db := newTestEcho(t)

	payload := `{"title":"<script>alert(1)</script>","author_first_name":"<b>Bob</b>","author_family_name":"Billings","genres":["<i>G</i>"],"copies":1}`
	req := httptest.NewRequest(http.MethodPost, "/test/books", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = testgen.Serve(e, http.MethodGet, models.BookListPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, rec.Body.String(), "<b>Bob</b>")

	rec = testgen.Serve(e, http.MethodGet, models.GenreListPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<i>G</i>")
	assert.Contains(t, rec.Body.String(), "&lt;i&gt;G&lt;/i&gt;")

	// the form path escapes the same way, so it finds the seeded genre
	rec = testgen.Serve(e, http.MethodPost, "/catalog/genre/create", url.Values{"name": {"<i>G</i>"}})
	testgen.Location(t, rec)
	assert.Equal(t, 1, testgen.Count(t, db, (*models.Genre)(nil)))
}

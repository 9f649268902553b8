// Package testgen provides a migrated in-memory catalog, fixtures, and Echo
// contexts for exercising the catalog handlers in tests.
package testgen

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/binder"
	"github.com/shishobooks/locallibrary/pkg/database"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewDB opens a private in-memory database with every migration applied.
// The database is closed when the test completes.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	database.RegisterModels(db)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Render is a single call to the renderer.
type Render struct {
	Name string
	Data echo.Map
}

// Renderer records every view rendered through it instead of executing
// templates, so tests can assert on the view name and its payload.
type Renderer struct {
	mu      sync.Mutex
	renders []Render
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	m, _ := data.(echo.Map)
	if m == nil {
		if raw, ok := data.(map[string]interface{}); ok {
			m = raw
		}
	}

	r.mu.Lock()
	r.renders = append(r.renders, Render{Name: name, Data: m})
	r.mu.Unlock()

	_, err := io.WriteString(w, name)
	return err
}

// Renders returns every recorded render in order.
func (r *Renderer) Renders() []Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Render(nil), r.renders...)
}

// Last returns the most recent render, failing the test if nothing has been
// rendered yet.
func (r *Renderer) Last(t *testing.T) Render {
	t.Helper()
	renders := r.Renders()
	require.NotEmpty(t, renders, "expected a view to be rendered")
	return renders[len(renders)-1]
}

// NewEcho returns an Echo instance configured like the server: the catalog
// binder, the error handler, and a recording renderer.
func NewEcho(t *testing.T) (*echo.Echo, *Renderer) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	r := &Renderer{}
	e.Renderer = r
	return e, r
}

// NewContext builds a context for a single request. A non-nil form is sent as
// a URL-encoded body. params are path parameter name/value pairs.
func NewContext(e *echo.Echo, method, target string, form url.Values, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(params)%2 != 0 {
		panic(fmt.Sprintf("testgen: odd number of path params: %v", params))
	}
	var names, values []string
	for i := 0; i < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	return c, rec
}

// Serve sends a request through the full Echo router, including middleware
// and the error handler.
func Serve(e *echo.Echo, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	req.Header.Set(echo.HeaderAccept, echo.MIMETextHTML)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Location returns the redirect target of a response, failing the test if it
// isn't a 302.
func Location(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code, "expected a redirect, got body %q", rec.Body.String())
	return rec.Header().Get(echo.HeaderLocation)
}

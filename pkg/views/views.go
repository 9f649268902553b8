// Package views renders the catalog pages. Every page is parsed together with
// the shared layout and looked up by its file name, so "genre_list" renders
// templates/genre_list.html.
package views

import (
	"embed"
	"html"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/identifiers"
	"github.com/shishobooks/locallibrary/pkg/models"
)

//go:embed templates/*.html
var files embed.FS

const layout = "templates/layout.html"

// Renderer implements echo.Renderer.
type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	pages, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	r := &Renderer{templates: map[string]*template.Template{}}
	for _, page := range pages {
		if page == layout {
			continue
		}
		name := strings.TrimSuffix(path.Base(page), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files, layout, page)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse view %s", name)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return errors.Errorf("view %q doesn't exist", name)
	}
	return errors.WithStack(t.ExecuteTemplate(w, "layout", data))
}

// Has reports whether a view exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Text fields are stored already escaped, so they're marked safe for display
// and unescaped before going back into form inputs, which html/template
// escapes again.
var funcs = template.FuncMap{
	"safe": func(s string) template.HTML {
		return template.HTML(s) //nolint:gosec
	},
	"unescape": html.UnescapeString,
	"ymd": func(t *time.Time) string {
		return models.FormatDate(t)
	},
	"isbnLabel": func(s string) string {
		return identifiers.DetectISBN(html.UnescapeString(s)).Label()
	},
}

package catalog

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/aggregate"
	"github.com/shishobooks/locallibrary/pkg/authors"
	"github.com/shishobooks/locallibrary/pkg/bookinstances"
	"github.com/shishobooks/locallibrary/pkg/books"
	"github.com/shishobooks/locallibrary/pkg/genres"
	"github.com/shishobooks/locallibrary/pkg/models"
)

const viewIndex = "index"

type handler struct {
	bookService     *books.Service
	instanceService *bookinstances.Service
	authorService   *authors.Service
	genreService    *genres.Service
}

// index shows how many of each record the catalog holds.
func (h *handler) index(c echo.Context) error {
	ctx := c.Request().Context()
	available := models.BookInstanceStatusAvailable

	results, err := aggregate.New().
		Add("book_count", aggregate.Fetch(h.bookService.CountBooks)).
		Add("book_instance_count", aggregate.Fetch(func(ctx context.Context) (int, error) {
			return h.instanceService.CountBookInstances(ctx, bookinstances.CountBookInstancesOptions{})
		})).
		Add("book_instance_available_count", aggregate.Fetch(func(ctx context.Context) (int, error) {
			return h.instanceService.CountBookInstances(ctx, bookinstances.CountBookInstancesOptions{Status: &available})
		})).
		Add("author_count", aggregate.Fetch(h.authorService.CountAuthors)).
		Add("genre_count", aggregate.Fetch(h.genreService.CountGenres)).
		Wait(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	data := echo.Map{"title": "Local Library Home"}
	for name, count := range results {
		data[name] = count
	}

	return errors.WithStack(c.Render(http.StatusOK, viewIndex, data))
}

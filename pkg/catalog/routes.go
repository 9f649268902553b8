package catalog

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/authors"
	"github.com/shishobooks/locallibrary/pkg/bookinstances"
	"github.com/shishobooks/locallibrary/pkg/books"
	"github.com/shishobooks/locallibrary/pkg/genres"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the catalog home page, then every entity's
// routes beneath it.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		bookService:     books.NewService(db),
		instanceService: bookinstances.NewService(db),
		authorService:   authors.NewService(db),
		genreService:    genres.NewService(db),
	}

	g.GET("", h.index)

	genres.RegisterRoutesWithGroup(g, db)
	authors.RegisterRoutesWithGroup(g, db)
	books.RegisterRoutesWithGroup(g, db)
	bookinstances.RegisterRoutesWithGroup(g, db)
}

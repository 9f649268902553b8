package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/authors"
	"github.com/shishobooks/locallibrary/pkg/genres"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		bookService:   NewService(db),
		authorService: authors.NewService(db),
		genreService:  genres.NewService(db),
	}

	g.GET("/books", h.list)
	g.GET("/book/create", h.createForm)
	g.POST("/book/create", h.create)
	g.GET("/book/:id", h.retrieve)
	g.GET("/book/:id/update", h.updateForm)
	g.POST("/book/:id/update", h.update)
	g.GET("/book/:id/delete", h.deleteForm)
	g.POST("/book/:id/delete", h.deleteBook)
}

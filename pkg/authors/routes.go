package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers author routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
	}

	g.GET("/authors", h.list)
	g.GET("/author/create", h.createForm)
	g.POST("/author/create", h.create)
	g.GET("/author/:id", h.retrieve)
	g.GET("/author/:id/update", h.updateForm)
	g.POST("/author/:id/update", h.update)
	g.GET("/author/:id/delete", h.deleteForm)
	g.POST("/author/:id/delete", h.deleteAuthor)
}

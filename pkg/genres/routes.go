package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers genre routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	genreService := NewService(db)

	h := &handler{
		genreService: genreService,
	}

	g.GET("/genres", h.list)
	g.GET("/genre/create", h.createForm)
	g.POST("/genre/create", h.create)
	g.GET("/genre/:id", h.retrieve)
	g.GET("/genre/:id/update", h.updateForm)
	g.POST("/genre/:id/update", h.update)
	g.GET("/genre/:id/delete", h.deleteForm)
	g.POST("/genre/:id/delete", h.deleteGenre)
}

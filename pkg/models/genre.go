package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",notnull" json:"name"`
}

func (g *Genre) URL() string {
	return GenreURL(g.ID)
}

type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	BookID  int    `bun:",pk" json:"book_id"`
	Book    *Book  `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	GenreID int    `bun:",pk" json:"genre_id"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `bun:",notnull" json:"title"`
	SortTitle string    `bun:",notnull" json:"sort_title"`
	AuthorID  int       `bun:",nullzero" json:"author_id"`
	Author    *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Summary   string    `bun:",notnull" json:"summary"`
	ISBN      string    `bun:"isbn,notnull" json:"isbn"`
	Genres    []*Genre  `bun:"m2m:book_genres,join:Book=Genre" json:"genres,omitempty"`

	// GenreIDs is the submitted genre selection. It's only populated on
	// candidates built from form input; persisted books carry Genres instead.
	GenreIDs []int `bun:"-" json:"genre_ids,omitempty"`
}

func (b *Book) URL() string {
	return BookURL(b.ID)
}

// HasGenre reports whether the book is tagged with the given genre, looking at
// both the submitted selection and any loaded relation.
func (b *Book) HasGenre(genreID int) bool {
	for _, id := range b.GenreIDs {
		if id == genreID {
			return true
		}
	}
	for _, g := range b.Genres {
		if g != nil && g.ID == genreID {
			return true
		}
	}
	return false
}

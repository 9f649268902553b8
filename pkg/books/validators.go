package books

import (
	"html"
	"strconv"

	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/sortname"
)

type BookPayload struct {
	Title   string `form:"title" json:"title" mod:"trim,escape" validate:"required,max=300"`
	Author  string `form:"author" json:"author" mod:"trim,escape" validate:"required,numeric"`
	Summary string `form:"summary" json:"summary" mod:"trim,escape" validate:"required"`
	ISBN    string `form:"isbn" json:"isbn" mod:"trim,escape" validate:"required,max=20"`
	// Genre is every selected genre. A single checkbox decodes into a
	// one-element slice.
	Genre []string `form:"genre" json:"genre" mod:"dive,trim,escape" validate:"dive,numeric"`
}

// Book builds the candidate book from the sanitized payload. References that
// aren't numbers are dropped. The sort title is derived from the unescaped
// title so entities don't affect ordering.
func (p BookPayload) Book(id int) models.Book {
	authorID, _ := strconv.Atoi(p.Author)

	genreIDs := make([]int, 0, len(p.Genre))
	for _, g := range p.Genre {
		if genreID, err := strconv.Atoi(g); err == nil {
			genreIDs = append(genreIDs, genreID)
		}
	}

	return models.Book{
		ID:        id,
		Title:     p.Title,
		SortTitle: sortname.ForTitle(html.UnescapeString(p.Title)),
		AuthorID:  authorID,
		Summary:   p.Summary,
		ISBN:      p.ISBN,
		GenreIDs:  genreIDs,
	}
}

type DeleteBookPayload struct {
	BookID string `form:"bookid" json:"bookid" mod:"trim"`
}

package genres

import "github.com/shishobooks/locallibrary/pkg/models"

type GenrePayload struct {
	Name string `form:"name" json:"name" mod:"trim,escape" validate:"required,max=100"`
}

// Genre builds the candidate genre from the sanitized payload.
func (p GenrePayload) Genre(id int) models.Genre {
	return models.Genre{ID: id, Name: p.Name}
}

// DeleteGenrePayload names the genre to delete. It's read from the body, not
// the path.
type DeleteGenrePayload struct {
	GenreID string `form:"genreid" json:"genreid" mod:"trim"`
}

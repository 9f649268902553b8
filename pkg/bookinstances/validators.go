package bookinstances

import (
	"strconv"

	"github.com/shishobooks/locallibrary/pkg/models"
)

type BookInstancePayload struct {
	Book    string `form:"book" json:"book" mod:"trim,escape" validate:"required,numeric"`
	Imprint string `form:"imprint" json:"imprint" mod:"trim,escape" validate:"required,max=200"`
	Status  string `form:"status" json:"status" mod:"trim,escape" default:"Maintenance" validate:"oneof=Available Maintenance Loaned Reserved"`
	DueBack string `form:"due_back" json:"due_back" mod:"trim" validate:"omitempty,date"`
}

// BookInstance builds the candidate copy from the sanitized payload.
func (p BookInstancePayload) BookInstance(id int) models.BookInstance {
	bookID, _ := strconv.Atoi(p.Book)
	return models.BookInstance{
		ID:      id,
		BookID:  bookID,
		Imprint: p.Imprint,
		Status:  p.Status,
		DueBack: models.ParseDate(p.DueBack),
	}
}

type DeleteBookInstancePayload struct {
	BookInstanceID string `form:"bookinstanceid" json:"bookinstanceid" mod:"trim"`
}

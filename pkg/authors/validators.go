package authors

import "github.com/shishobooks/locallibrary/pkg/models"

type AuthorPayload struct {
	FirstName   string `form:"first_name" json:"first_name" mod:"trim,escape" validate:"required,max=100"`
	FamilyName  string `form:"family_name" json:"family_name" mod:"trim,escape" validate:"required,max=100"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth" mod:"trim" validate:"omitempty,date"`
	DateOfDeath string `form:"date_of_death" json:"date_of_death" mod:"trim" validate:"omitempty,date"`
}

// Author builds the candidate author from the sanitized payload. Dates that
// are empty or don't parse are left unset.
func (p AuthorPayload) Author(id int) models.Author {
	return models.Author{
		ID:          id,
		FirstName:   p.FirstName,
		FamilyName:  p.FamilyName,
		DateOfBirth: models.ParseDate(p.DateOfBirth),
		DateOfDeath: models.ParseDate(p.DateOfDeath),
	}
}

type DeleteAuthorPayload struct {
	AuthorID string `form:"authorid" json:"authorid" mod:"trim"`
}

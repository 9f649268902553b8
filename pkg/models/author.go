package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FirstName   string     `bun:",notnull" json:"first_name"`
	FamilyName  string     `bun:",notnull" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death"`
}

func (a *Author) URL() string {
	return AuthorURL(a.ID)
}

// FullName returns the name in "Family, First" form. It's empty unless both
// parts are known so that lists never show a dangling comma.
func (a *Author) FullName() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan returns "<birth> - <death>" using the long display date format.
// Unknown ends are left blank.
func (a *Author) Lifespan() string {
	if a.DateOfBirth == nil && a.DateOfDeath == nil {
		return ""
	}
	return DisplayDate(a.DateOfBirth) + " - " + DisplayDate(a.DateOfDeath)
}

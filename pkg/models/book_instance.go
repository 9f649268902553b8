package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Book instance status constants.
const (
	BookInstanceStatusAvailable   = "Available"
	BookInstanceStatusMaintenance = "Maintenance"
	BookInstanceStatusLoaned      = "Loaned"
	BookInstanceStatusReserved    = "Reserved"
)

// BookInstanceStatuses lists every status in the order the form offers them.
var BookInstanceStatuses = []string{
	BookInstanceStatusAvailable,
	BookInstanceStatusMaintenance,
	BookInstanceStatusLoaned,
	BookInstanceStatusReserved,
}

type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi"`

	ID        int        `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	BookID    int        `bun:",nullzero" json:"book_id"`
	Book      *Book      `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Imprint   string     `bun:",notnull" json:"imprint"`
	Status    string     `bun:",notnull" json:"status"`
	DueBack   *time.Time `json:"due_back"`
}

func (bi *BookInstance) URL() string {
	return BookInstanceURL(bi.ID)
}

func (bi *BookInstance) DueBackFormatted() string {
	return DisplayDate(bi.DueBack)
}

// IsAvailable is true when the copy can be borrowed right now.
func (bi *BookInstance) IsAvailable() bool {
	return bi.Status == BookInstanceStatusAvailable
}

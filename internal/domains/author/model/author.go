package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/link"
)

const (
	MaxNameLength = 255
)

// Author represents the core Author entity.
// BookIDs is this side's copy of the author/book relationship.
type Author struct {
	ID        uuid.UUID   `json:"id" db:"id" msgpack:"id"`
	FirstName string      `json:"firstName" db:"first_name" msgpack:"first_name"`
	LastName  string      `json:"lastName" db:"last_name" msgpack:"last_name"`
	Birthday  time.Time   `json:"birthday" db:"birthday" msgpack:"birthday"`
	BookIDs   []uuid.UUID `json:"bookIds" db:"book_ids" msgpack:"book_ids"`

	// Audit timestamps, set by the store only
	CreatedAt time.Time `json:"createdAt" db:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" msgpack:"updated_at"`
}

func (a *Author) RecordID() uuid.UUID      { return a.ID }
func (a *Author) Links() []uuid.UUID       { return a.BookIDs }
func (a *Author) SetLinks(ids []uuid.UUID) { a.BookIDs = ids }

// Validate checks field-level constraints and reports every failing field.
func (a *Author) Validate() error {
	return link.NewValidationError(validation.ValidateStruct(a,
		validation.Field(&a.FirstName, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&a.LastName, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&a.Birthday, validation.Required),
	))
}

// AuthorPatch carries the scalar fields of a partial update. A nil field
// keeps the stored value. Links are not part of a patch; they only change
// through validate, diff and compensate.
type AuthorPatch struct {
	FirstName *string
	LastName  *string
	Birthday  *time.Time
}

// Apply merges the patch over existing and returns the merged copy.
// existing is not modified.
func (p AuthorPatch) Apply(existing Author) Author {
	merged := existing
	merged.BookIDs = append([]uuid.UUID(nil), existing.BookIDs...)

	if p.FirstName != nil {
		merged.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		merged.LastName = *p.LastName
	}
	if p.Birthday != nil {
		merged.Birthday = *p.Birthday
	}
	return merged
}

// IsEmpty reports whether the patch changes nothing.
func (p AuthorPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Birthday == nil
}

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/link"
)

// IBAN length bounds
const (
	MinIBANLength  = 16
	MaxIBANLength  = 34
	MaxTitleLength = 500
)

// Book represents the main book entity
type Book struct {
	ID          uuid.UUID `json:"id" db:"id" msgpack:"id"`
	Title       string    `json:"title" db:"title" msgpack:"title"`
	IBAN        string    `json:"iban" db:"iban" msgpack:"iban"`
	PublishedAt time.Time `json:"publishedAt" db:"published_at" msgpack:"published_at"`

	// Relationships: this side's copy, never empty for a stored book
	AuthorIDs []uuid.UUID `json:"authorIds" db:"author_ids" msgpack:"author_ids"`

	// Timestamps
	CreatedAt time.Time `json:"createdAt" db:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" msgpack:"updated_at"`
}

func (b *Book) RecordID() uuid.UUID      { return b.ID }
func (b *Book) Links() []uuid.UUID       { return b.AuthorIDs }
func (b *Book) SetLinks(ids []uuid.UUID) { b.AuthorIDs = ids }

// Validate checks field-level constraints and reports every failing field.
func (b *Book) Validate() error {
	return link.NewValidationError(validation.ValidateStruct(b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, MaxTitleLength)),
		validation.Field(&b.IBAN, validation.Required, validation.RuneLength(MinIBANLength, MaxIBANLength)),
		validation.Field(&b.PublishedAt, validation.Required),
		validation.Field(&b.AuthorIDs, validation.Required.Error("must contain at least one author")),
	))
}

// BookPatch carries the scalar fields of a partial update; nil keeps the
// stored value. Links are not part of a patch.
type BookPatch struct {
	Title       *string
	IBAN        *string
	PublishedAt *time.Time
}

// Apply merges the patch over existing and returns the merged copy.
func (p BookPatch) Apply(existing Book) Book {
	merged := existing
	merged.AuthorIDs = append([]uuid.UUID(nil), existing.AuthorIDs...)

	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.IBAN != nil {
		merged.IBAN = *p.IBAN
	}
	if p.PublishedAt != nil {
		merged.PublishedAt = *p.PublishedAt
	}
	return merged
}

func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.IBAN == nil && p.PublishedAt == nil
}

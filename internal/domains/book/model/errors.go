package model

import (
	"bookshelf-backend/internal/domains/link"
)

const Kind = "Book"

var (
	ErrBookNotFound = link.NotFoundf("book not found")
)

// NotFound builds the caller-facing error for a missing book.
func NotFound(id any) error {
	return link.NotFoundf("Book with %v was not found", id)
}

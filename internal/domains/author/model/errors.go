package model

import (
	"bookshelf-backend/internal/domains/link"
)

// Kind is the label used for authors in existence checks, logs and metrics.
const Kind = "Author"

var (
	// ErrAuthorNotFound is returned by the repository when no row matches.
	ErrAuthorNotFound = link.NotFoundf("author not found")
)

// NotFound builds the caller-facing error for a missing author.
func NotFound(id any) error {
	return link.NotFoundf("Author with %v was not found", id)
}

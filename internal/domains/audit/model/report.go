package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	authorModel "bookshelf-backend/internal/domains/author/model"
	bookModel "bookshelf-backend/internal/domains/book/model"
)

// Mismatch kinds
const (
	// The book lists the author but the author does not list the book
	MissingOnAuthor = "missing_on_author"
	// The author lists the book but the book does not list the author
	MissingOnBook = "missing_on_book"
	// A link points to an author or book that does not exist
	DanglingAuthor = "dangling_author"
	DanglingBook   = "dangling_book"
	// The same id appears twice in one relationship set
	DuplicateLink = "duplicate_link"
)

type Mismatch struct {
	Kind     string `json:"kind"`
	AuthorID string `json:"authorId"`
	BookID   string `json:"bookId"`
}

// Report is the result of one audit run. It is stored in the cache and
// served as-is by GET /links/audit.
type Report struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt time.Time  `json:"finishedAt"`
	Authors    int        `json:"authors"`
	Books      int        `json:"books"`
	Consistent bool       `json:"consistent"`
	Mismatches []Mismatch `json:"mismatches"`
}

// Check compares both collections and lists every link that breaks
// "book in author.bookIds iff author in book.authorIds". It reads only.
func Check(authors []*authorModel.Author, books []*bookModel.Book) Report {
	authorLinks := make(map[uuid.UUID]map[uuid.UUID]bool, len(authors))
	bookLinks := make(map[uuid.UUID]map[uuid.UUID]bool, len(books))
	mismatches := make([]Mismatch, 0)

	for _, a := range authors {
		set := make(map[uuid.UUID]bool, len(a.BookIDs))
		for _, id := range a.BookIDs {
			if set[id] {
				mismatches = append(mismatches, Mismatch{Kind: DuplicateLink, AuthorID: a.ID.String(), BookID: id.String()})
			}
			set[id] = true
		}
		authorLinks[a.ID] = set
	}
	for _, b := range books {
		set := make(map[uuid.UUID]bool, len(b.AuthorIDs))
		for _, id := range b.AuthorIDs {
			if set[id] {
				mismatches = append(mismatches, Mismatch{Kind: DuplicateLink, AuthorID: id.String(), BookID: b.ID.String()})
			}
			set[id] = true
		}
		bookLinks[b.ID] = set
	}

	for _, a := range authors {
		for _, bookID := range lo.Uniq(a.BookIDs) {
			linked, exists := bookLinks[bookID]
			switch {
			case !exists:
				mismatches = append(mismatches, Mismatch{Kind: DanglingBook, AuthorID: a.ID.String(), BookID: bookID.String()})
			case !linked[a.ID]:
				mismatches = append(mismatches, Mismatch{Kind: MissingOnBook, AuthorID: a.ID.String(), BookID: bookID.String()})
			}
		}
	}
	for _, b := range books {
		for _, authorID := range lo.Uniq(b.AuthorIDs) {
			linked, exists := authorLinks[authorID]
			switch {
			case !exists:
				mismatches = append(mismatches, Mismatch{Kind: DanglingAuthor, AuthorID: authorID.String(), BookID: b.ID.String()})
			case !linked[b.ID]:
				mismatches = append(mismatches, Mismatch{Kind: MissingOnAuthor, AuthorID: authorID.String(), BookID: b.ID.String()})
			}
		}
	}

	return Report{
		Authors:    len(authors),
		Books:      len(books),
		Consistent: len(mismatches) == 0,
		Mismatches: mismatches,
	}
}

// LinkAuditPayload is the asynq task payload.
type LinkAuditPayload struct {
	RequestedBy string    `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
}

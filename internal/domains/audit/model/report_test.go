package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	authorModel "bookshelf-backend/internal/domains/author/model"
	bookModel "bookshelf-backend/internal/domains/book/model"
)

func TestCheckConsistent(t *testing.T) {
	a1, a2 := uuid.New(), uuid.New()
	b1 := uuid.New()

	report := Check(
		[]*authorModel.Author{
			{ID: a1, BookIDs: []uuid.UUID{b1}},
			{ID: a2, BookIDs: []uuid.UUID{b1}},
		},
		[]*bookModel.Book{
			{ID: b1, AuthorIDs: []uuid.UUID{a2, a1}},
		},
	)

	assert.True(t, report.Consistent)
	assert.Empty(t, report.Mismatches)
	assert.Equal(t, 2, report.Authors)
	assert.Equal(t, 1, report.Books)
}

func TestCheckFindsEveryKind(t *testing.T) {
	a1, a2, ghostAuthor := uuid.New(), uuid.New(), uuid.New()
	b1, b2, ghostBook := uuid.New(), uuid.New(), uuid.New()

	report := Check(
		[]*authorModel.Author{
			// lists b2, which does not list a1; lists a missing book
			{ID: a1, BookIDs: []uuid.UUID{b1, b2, ghostBook}},
			// listed by b1 but does not list it; duplicate b2
			{ID: a2, BookIDs: []uuid.UUID{b2, b2}},
		},
		[]*bookModel.Book{
			{ID: b1, AuthorIDs: []uuid.UUID{a1, a2, ghostAuthor}},
			{ID: b2, AuthorIDs: []uuid.UUID{a2}},
		},
	)

	assert.False(t, report.Consistent)
	assert.ElementsMatch(t, []Mismatch{
		{Kind: DuplicateLink, AuthorID: a2.String(), BookID: b2.String()},
		{Kind: MissingOnBook, AuthorID: a1.String(), BookID: b2.String()},
		{Kind: DanglingBook, AuthorID: a1.String(), BookID: ghostBook.String()},
		{Kind: MissingOnAuthor, AuthorID: a2.String(), BookID: b1.String()},
		{Kind: DanglingAuthor, AuthorID: ghostAuthor.String(), BookID: b1.String()},
	}, report.Mismatches)
}

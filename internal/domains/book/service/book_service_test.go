package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorModel "bookshelf-backend/internal/domains/author/model"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/domains/link"
	"bookshelf-backend/internal/infrastructure/database"
)

const validIBAN = "DE89370400440532013000"

type fixture struct {
	svc     ServiceInterface
	books   repository.RepositoryInterface
	authors authorRepo.RepositoryInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "shelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		books:   repository.NewSQLiteRepository(db.DB),
		authors: authorRepo.NewSQLiteRepository(db.DB),
	}
	f.svc = NewService(f.books, f.authors)
	return f
}

func (f *fixture) author(t *testing.T, name string) *authorModel.Author {
	t.Helper()
	a, err := f.authors.Save(context.Background(), &authorModel.Author{
		FirstName: name,
		LastName:  "Writer",
		Birthday:  time.Date(1960, 3, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) create(t *testing.T, title string, authors ...*authorModel.Author) *model.Book {
	t.Helper()
	ids := make([]string, len(authors))
	for i, a := range authors {
		ids[i] = a.ID.String()
	}
	b, err := f.svc.Create(context.Background(), model.CreateBookRequest{
		Title:       title,
		IBAN:        validIBAN,
		PublishedAt: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		AuthorIDs:   ids,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) reloadAuthor(t *testing.T, id uuid.UUID) *authorModel.Author {
	t.Helper()
	a, err := f.authors.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) reloadBook(t *testing.T, id uuid.UUID) *model.Book {
	t.Helper()
	b, err := f.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

// assertLinksAgree checks B in A.bookIds <=> A in B.authorIds over the whole store.
func (f *fixture) assertLinksAgree(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	authors, err := f.authors.FindAll(ctx)
	require.NoError(t, err)
	books, err := f.books.FindAll(ctx)
	require.NoError(t, err)

	for _, a := range authors {
		for _, b := range books {
			assert.Equal(t,
				containsID(a.BookIDs, b.ID),
				containsID(b.AuthorIDs, a.ID),
				"author %s / book %s disagree", a.ID, b.ID)
		}
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func countID(ids []uuid.UUID, id uuid.UUID) int {
	n := 0
	for _, candidate := range ids {
		if candidate == id {
			n++
		}
	}
	return n
}

// ============================================
// CREATE
// ============================================

func TestCreateLinksEveryAuthorOnce(t *testing.T) {
	f := newFixture(t)
	a1, a2 := f.author(t, "One"), f.author(t, "Two")

	b := f.create(t, "Shared", a1, a2)

	assert.Equal(t, []uuid.UUID{a1.ID, a2.ID}, b.AuthorIDs)
	assert.Equal(t, 1, countID(f.reloadAuthor(t, a1.ID).BookIDs, b.ID))
	assert.Equal(t, 1, countID(f.reloadAuthor(t, a2.ID).BookIDs, b.ID))
	f.assertLinksAgree(t)
}

func TestCreatePrependsNewBook(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Prolific")

	first := f.create(t, "First", a)
	second := f.create(t, "Second", a)

	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, f.reloadAuthor(t, a.ID).BookIDs)
}

func TestCreateRejectsBadAuthorLists(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Only")

	tests := []struct {
		name    string
		ids     []string
		wantErr error
	}{
		{"duplicate id", []string{a.ID.String(), a.ID.String()}, link.ErrNotFound},
		{"unknown id", []string{a.ID.String(), uuid.NewString()}, link.ErrNotFound},
		{"malformed id", []string{"not-an-id"}, link.ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), model.CreateBookRequest{
				Title:       "Doomed",
				IBAN:        validIBAN,
				PublishedAt: time.Now(),
				AuthorIDs:   tt.ids,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	books, err := f.books.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Empty(t, f.reloadAuthor(t, a.ID).BookIDs)
}

func TestCreateReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), model.CreateBookRequest{
		IBAN: "SHORT",
	})

	var verr *link.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, len(verr.Fields))
	for i, fe := range verr.Fields {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"authorIds", "iban", "publishedAt", "title"}, fields)
}

// ============================================
// UPDATE
// ============================================

func TestUpdateRejectsEmptyAuthorList(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Solo")
	b := f.create(t, "Kept", a)

	err := f.svc.Update(context.Background(), b.ID.String(), model.UpdateBookRequest{AuthorIDs: []string{}})

	var verr *link.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []uuid.UUID{a.ID}, f.reloadBook(t, b.ID).AuthorIDs)
	assert.Equal(t, []uuid.UUID{b.ID}, f.reloadAuthor(t, a.ID).BookIDs)
}

func TestUpdateMovesLinks(t *testing.T) {
	f := newFixture(t)
	a1, a2, a3 := f.author(t, "One"), f.author(t, "Two"), f.author(t, "Three")
	other := f.create(t, "Other", a1)
	b := f.create(t, "Moving", a1, a2)
	a2Before := f.reloadAuthor(t, a2.ID)

	err := f.svc.Update(context.Background(), b.ID.String(), model.UpdateBookRequest{
		AuthorIDs: []string{a2.ID.String(), a3.ID.String()},
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{a2.ID, a3.ID}, f.reloadBook(t, b.ID).AuthorIDs)
	assert.Equal(t, []uuid.UUID{other.ID}, f.reloadAuthor(t, a1.ID).BookIDs)
	assert.Equal(t, []uuid.UUID{b.ID}, f.reloadAuthor(t, a3.ID).BookIDs)

	a2After := f.reloadAuthor(t, a2.ID)
	assert.Equal(t, a2Before.BookIDs, a2After.BookIDs)
	assert.True(t, a2Before.UpdatedAt.Equal(a2After.UpdatedAt), "untouched author was rewritten")
	f.assertLinksAgree(t)
}

func TestUpdateDeletesAuthorLeftWithoutBooks(t *testing.T) {
	f := newFixture(t)
	a1, a2 := f.author(t, "Leaving"), f.author(t, "Staying")
	b := f.create(t, "Book", a1, a2)

	err := f.svc.Update(context.Background(), b.ID.String(), model.UpdateBookRequest{
		AuthorIDs: []string{a2.ID.String()},
	})
	require.NoError(t, err)

	_, err = f.authors.FindByID(context.Background(), a1.ID)
	assert.ErrorIs(t, err, authorModel.ErrAuthorNotFound)
	f.assertLinksAgree(t)
}

func TestUpdateFieldsOnlyKeepsLinks(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Author")
	b := f.create(t, "Draft", a)

	title := "Final"
	require.NoError(t, f.svc.Update(context.Background(), b.ID.String(), model.UpdateBookRequest{Title: &title}))

	got := f.reloadBook(t, b.ID)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, []uuid.UUID{a.ID}, got.AuthorIDs)

	short := "TOO-SHORT"
	err := f.svc.Update(context.Background(), b.ID.String(), model.UpdateBookRequest{IBAN: &short})
	var verr *link.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateUnknownBook(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Author")

	err := f.svc.Update(context.Background(), uuid.NewString(), model.UpdateBookRequest{
		AuthorIDs: []string{a.ID.String()},
	})
	assert.ErrorIs(t, err, link.ErrNotFound)
}

// ============================================
// REMOVE
// ============================================

func TestRemoveUnlinksAuthors(t *testing.T) {
	f := newFixture(t)
	a1, a2 := f.author(t, "One"), f.author(t, "Two")
	keep := f.create(t, "Keep", a1)
	gone := f.create(t, "Gone", a1, a2)

	require.NoError(t, f.svc.Remove(context.Background(), gone.ID.String()))

	_, err := f.svc.Get(context.Background(), gone.ID.String())
	assert.ErrorIs(t, err, link.ErrNotFound)
	assert.Equal(t, []uuid.UUID{keep.ID}, f.reloadAuthor(t, a1.ID).BookIDs)

	// a2 had only this book
	_, err = f.authors.FindByID(context.Background(), a2.ID)
	assert.ErrorIs(t, err, authorModel.ErrAuthorNotFound)
	f.assertLinksAgree(t)
}

func TestRemoveMissingBook(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Remove(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, link.ErrNotFound)

	err = f.svc.Remove(context.Background(), "42")
	assert.ErrorIs(t, err, link.ErrInvalidIdentifier)
}

// ============================================
// LIST
// ============================================

func TestListByAuthor(t *testing.T) {
	f := newFixture(t)
	a1, a2 := f.author(t, "One"), f.author(t, "Two")
	b1 := f.create(t, "Mine", a1)
	f.create(t, "Theirs", a2)

	all, err := f.svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(context.Background(), a1.ID.String())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b1.ID, mine[0].ID)

	_, err = f.svc.List(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, link.ErrNotFound)
}

// ============================================
// PARTIAL COMPENSATION
// ============================================

// flakyAuthors fails the nth Save and passes everything else through.
type flakyAuthors struct {
	authorRepo.RepositoryInterface
	failOn   int
	saves    int
	failedID uuid.UUID
}

func (s *flakyAuthors) Save(ctx context.Context, a *authorModel.Author) (*authorModel.Author, error) {
	s.saves++
	if s.saves == s.failOn {
		s.failedID = a.ID
		return nil, errors.New("connection reset")
	}
	return s.RepositoryInterface.Save(ctx, a)
}

func TestCreateStopsAtFailedCompensation(t *testing.T) {
	f := newFixture(t)
	a1, a2, a3 := f.author(t, "One"), f.author(t, "Two"), f.author(t, "Three")

	flaky := &flakyAuthors{RepositoryInterface: f.authors, failOn: 2}
	svc := NewService(f.books, flaky)

	_, err := svc.Create(context.Background(), model.CreateBookRequest{
		Title:       "Half linked",
		IBAN:        validIBAN,
		PublishedAt: time.Now(),
		AuthorIDs:   []string{a1.ID.String(), a2.ID.String(), a3.ID.String()},
	})

	var partial *link.PartialCompensationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, link.OpAddBackReference, partial.Operation)
	assert.Equal(t, "author", partial.Side)
	assert.Len(t, partial.Applied, 1)
	assert.Equal(t, flaky.failedID, partial.Failed)
	assert.Len(t, partial.Skipped, 1)

	// The book and the first back-reference stay written
	saved := f.reloadBook(t, partial.Reference)
	assert.Len(t, saved.AuthorIDs, 3)
	assert.Equal(t, []uuid.UUID{saved.ID}, f.reloadAuthor(t, partial.Applied[0]).BookIDs)
	assert.Empty(t, f.reloadAuthor(t, partial.Failed).BookIDs)
	assert.Empty(t, f.reloadAuthor(t, partial.Skipped[0]).BookIDs)
}

// ============================================
// EXPORT
// ============================================

func TestExportBooksToExcel(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ada")
	b := f.create(t, "Notes", a)

	file, count, err := f.svc.ExportBooksToExcel(context.Background())
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	assert.Equal(t, 1, count)

	id, err := file.GetCellValue(exportSheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, b.ID.String(), id)

	names, err := file.GetCellValue(exportSheetName, "E2")
	require.NoError(t, err)
	assert.Equal(t, "Ada Writer", names)
}

// ============================================
// STALE CACHE
// ============================================

// cachedBooks keeps the first FindByID result per id and never drops it,
// the way a cache-aside read behaves when invalidation was lost.
type cachedBooks struct {
	repository.RepositoryInterface
	snapshots map[uuid.UUID]model.Book
}

func (s *cachedBooks) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if b, ok := s.snapshots[id]; ok {
		return &b, nil
	}
	b, err := s.RepositoryInterface.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.snapshots[id] = *b
	return b, nil
}

func TestUpdateDiffsAgainstStoredBookNotCachedCopy(t *testing.T) {
	f := newFixture(t)
	a1, a2 := f.author(t, "One"), f.author(t, "Two")
	// each author keeps a second book so neither is deleted as an orphan
	f.create(t, "Anchor one", a1)
	f.create(t, "Anchor two", a2)
	b := f.create(t, "Moving", a1)

	cached := &cachedBooks{RepositoryInterface: f.books, snapshots: map[uuid.UUID]model.Book{}}
	svc := NewService(cached, f.authors)
	ctx := context.Background()

	_, err := svc.Get(ctx, b.ID.String())
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, b.ID.String(), model.UpdateBookRequest{AuthorIDs: []string{a2.ID.String()}}))
	require.NoError(t, svc.Update(ctx, b.ID.String(), model.UpdateBookRequest{AuthorIDs: []string{a1.ID.String()}}))

	assert.Equal(t, []uuid.UUID{a1.ID}, f.reloadBook(t, b.ID).AuthorIDs)
	assert.False(t, containsID(f.reloadAuthor(t, a2.ID).BookIDs, b.ID))
	assert.True(t, containsID(f.reloadAuthor(t, a1.ID).BookIDs, b.ID))
	f.assertLinksAgree(t)

	require.NoError(t, svc.Remove(ctx, b.ID.String()))
	assert.False(t, containsID(f.reloadAuthor(t, a1.ID).BookIDs, b.ID))
	f.assertLinksAgree(t)
}

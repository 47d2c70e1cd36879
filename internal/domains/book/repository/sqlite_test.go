package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/infrastructure/database"
)

func newTestRepo(t *testing.T) RepositoryInterface {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db.DB)
}

func newBook(title string, authors ...uuid.UUID) *model.Book {
	return &model.Book{
		Title:       title,
		IBAN:        "DE89370400440532013000",
		PublishedAt: time.Date(2001, 5, 6, 0, 0, 0, 0, time.UTC),
		AuthorIDs:   authors,
	}
}

func TestSQLiteSaveAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a1, a2 := uuid.New(), uuid.New()
	saved, err := repo.Save(ctx, newBook("Dune", a1, a2))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "DE89370400440532013000", got.IBAN)
	assert.Equal(t, []uuid.UUID{a1, a2}, got.AuthorIDs)
	assert.True(t, got.PublishedAt.Equal(saved.PublishedAt))
}

func TestSQLiteFindByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b1, err := repo.Save(ctx, newBook("One", uuid.New()))
	require.NoError(t, err)
	b2, err := repo.Save(ctx, newBook("Two", uuid.New()))
	require.NoError(t, err)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{b1.ID, b2.ID, b2.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestSQLiteUpdatePatchOnly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	author := uuid.New()
	saved, err := repo.Save(ctx, newBook("Dune", author))
	require.NoError(t, err)

	title := "Dune Messiah"
	published := time.Date(1969, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Update(ctx, saved.ID, model.BookPatch{Title: &title, PublishedAt: &published}))

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.True(t, got.PublishedAt.Equal(published))
	assert.Equal(t, saved.IBAN, got.IBAN)
	assert.Equal(t, []uuid.UUID{author}, got.AuthorIDs)
}

func TestSQLiteDeleteMissing(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestSQLiteFindAllOrdersBySubSecondCreation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)
	stamps := []time.Time{base, base.Add(100 * time.Millisecond), base.Add(time.Second)}
	repo.(*sqliteRepository).now = func() time.Time {
		next := stamps[0]
		stamps = stamps[1:]
		return next
	}

	whole, err := repo.Save(ctx, newBook("Whole second", uuid.New()))
	require.NoError(t, err)
	fraction, err := repo.Save(ctx, newBook("Tenth past", uuid.New()))
	require.NoError(t, err)
	later, err := repo.Save(ctx, newBook("Next second", uuid.New()))
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{whole.ID, fraction.ID, later.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].CreatedAt.Equal(base))
}

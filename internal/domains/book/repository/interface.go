package repository

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/book/model"
)

// RepositoryInterface is the Record Store of the books collection.
type RepositoryInterface interface {
	FindAll(ctx context.Context) ([]*model.Book, error)
	// FindByID returns model.ErrBookNotFound when no row matches.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Book, error)
	Save(ctx context.Context, b *model.Book) (*model.Book, error)
	Update(ctx context.Context, id uuid.UUID, patch model.BookPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const tableName = "books"

var columns = []string{
	"id",
	"title",
	"iban",
	"published_at",
	"author_ids",
	"created_at",
	"updated_at",
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/author/model"
)

// RepositoryInterface is the Record Store of the authors collection.
// Neither implementation opens a transaction.
type RepositoryInterface interface {
	FindAll(ctx context.Context) ([]*model.Author, error)
	// FindByID returns model.ErrAuthorNotFound when no row matches.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	// FindByIDs returns only the authors that exist, each once.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Author, error)
	// Save inserts or replaces the whole record, links included. A nil ID
	// gets a fresh one; timestamps are always set here.
	Save(ctx context.Context, a *model.Author) (*model.Author, error)
	// Update writes the scalar fields of patch only.
	Update(ctx context.Context, id uuid.UUID, patch model.AuthorPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const tableName = "authors"

var columns = []string{
	"id",
	"first_name",
	"last_name",
	"birthday",
	"book_ids",
	"created_at",
	"updated_at",
}

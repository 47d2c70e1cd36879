package service

import (
	"context"

	"bookshelf-backend/internal/domains/author/model"
)

// ServiceInterface - author use cases exposed to the HTTP layer
type ServiceInterface interface {
	// List returns every author, or only the authors linked from bookID
	// when it is not empty.
	List(ctx context.Context, bookID string) ([]*model.Author, error)
	Get(ctx context.Context, id string) (*model.Author, error)
	Create(ctx context.Context, req model.CreateAuthorRequest) (*model.Author, error)
	Update(ctx context.Context, id string, req model.UpdateAuthorRequest) error
	Remove(ctx context.Context, id string) error
}

package service

import (
	"context"

	"github.com/xuri/excelize/v2"

	"bookshelf-backend/internal/domains/book/model"
)

// ServiceInterface - book use cases exposed to the HTTP layer
type ServiceInterface interface {
	List(ctx context.Context, authorID string) ([]*model.Book, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	Update(ctx context.Context, id string, req model.UpdateBookRequest) error
	Remove(ctx context.Context, id string) error
	ExportBooksToExcel(ctx context.Context) (*excelize.File, int, error)
}

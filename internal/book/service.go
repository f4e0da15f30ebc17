// internal/book/service.go
package book

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the book catalog service.
type Service interface {
	Create(ctx context.Context, req Request) (*Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	GetAll(ctx context.Context) ([]*Book, error)
	Search(ctx context.Context, filter SearchFilter) (*Page, error)
	Update(ctx context.Context, id uuid.UUID, req Request) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DecreaseStock(ctx context.Context, id uuid.UUID) error
	IncreaseStock(ctx context.Context, id uuid.UUID) error
}

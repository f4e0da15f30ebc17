// internal/borrowing/service.go
package borrowing

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/book"
)

// Service defines the interface for the borrowing service.
type Service interface {
	Borrow(ctx context.Context, req Request) (*Borrowing, error)
	Return(ctx context.Context, id uuid.UUID) (*Borrowing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Borrowing, error)
	GetAll(ctx context.Context) ([]*Borrowing, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Borrowing, error)
	GetOverdue(ctx context.Context) ([]*Borrowing, error)
	OverdueReport(ctx context.Context) (string, error)
}

// BookGateway is the slice of the book service the orchestrator needs.
type BookGateway interface {
	GetBook(ctx context.Context, id uuid.UUID) (*book.Book, error)
	DecreaseStock(ctx context.Context, id uuid.UUID) error
	IncreaseStock(ctx context.Context, id uuid.UUID) error
}

// UserGateway is the slice of the user service the orchestrator needs.
type UserGateway interface {
	CheckUser(ctx context.Context, id uuid.UUID) error
}

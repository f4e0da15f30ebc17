// internal/book/implementation.go
package book

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/apperr"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	stream *StockStream
}

// NewService creates a new book catalog service instance.
func NewService(repo Repository, stream *StockStream) Service {
	return &service{repo: repo, stream: stream}
}

func (s *service) Create(ctx context.Context, req Request) (*Book, error) {
	if errs := req.Validate(); errs != nil {
		return nil, apperr.Validation(errs)
	}

	taken, err := s.repo.ExistsByISBN(ctx, req.ISBN, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflictf("ISBN already exists: %s", req.ISBN)
	}

	b := &Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		Stock:           req.Stock,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetAll(ctx context.Context) ([]*Book, error) {
	return s.repo.List(ctx)
}

func (s *service) Search(ctx context.Context, filter SearchFilter) (*Page, error) {
	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.Size <= 0 || filter.Size > 100 {
		filter.Size = 20
	}
	if filter.Genre != "" && !filter.Genre.Valid() {
		return nil, apperr.Validation(map[string]string{"genre": "Unknown genre: " + string(filter.Genre)})
	}
	return s.repo.Search(ctx, filter)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req Request) (*Book, error) {
	if errs := req.Validate(); errs != nil {
		return nil, apperr.Validation(errs)
	}

	taken, err := s.repo.ExistsByISBN(ctx, req.ISBN, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflictf("ISBN already exists: %s", req.ISBN)
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b.Title = req.Title
	b.Author = req.Author
	b.ISBN = req.ISBN
	b.PublicationYear = req.PublicationYear
	b.Genre = req.Genre
	b.Stock = req.Stock

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// DecreaseStock decrements the stock of a book, failing with a conflict
// when stock is already zero. The updated count is broadcast on the stream.
func (s *service) DecreaseStock(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.DecrementStock(ctx, id)
	if err != nil {
		return err
	}

	s.stream.Publish(StockEvent{BookID: b.ID, Title: b.Title, Stock: b.Stock})
	return nil
}

// IncreaseStock increments the stock of a book and broadcasts the update.
func (s *service) IncreaseStock(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.IncrementStock(ctx, id)
	if err != nil {
		return err
	}

	s.stream.Publish(StockEvent{BookID: b.ID, Title: b.Title, Stock: b.Stock})
	return nil
}

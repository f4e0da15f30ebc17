// internal/book/repository.go
package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libris/internal/apperr"
)

// Repository persists books.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	List(ctx context.Context) ([]*Book, error)
	Search(ctx context.Context, filter SearchFilter) (*Page, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByISBN(ctx context.Context, isbn string, excludeID uuid.UUID) (bool, error)

	// DecrementStock atomically decrements stock if it is positive and
	// returns the updated book. A zero-stock book yields a conflict and no
	// mutation; concurrent borrows race on this conditional update alone.
	DecrementStock(ctx context.Context, id uuid.UUID) (*Book, error)
	IncrementStock(ctx context.Context, id uuid.UUID) (*Book, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a postgres-backed book repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const uniqueViolation = "23505"

func (r *postgresRepository) Create(ctx context.Context, b *Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, publication_year, genre, stock)
		VALUES (:id, :title, :author, :isbn, :publication_year, :genre, :stock)
	`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.Conflictf("ISBN already exists: %s", b.ISBN)
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	b := &Book{}
	err := r.db.GetContext(ctx, b, `SELECT * FROM books WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("Book not found with id: %s", id)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*Book, error) {
	var books []*Book
	if err := r.db.SelectContext(ctx, &books, `SELECT * FROM books ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) Search(ctx context.Context, filter SearchFilter) (*Page, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Title != "" {
		add("title ILIKE '%%' || $%d || '%%'", filter.Title)
	}
	if filter.Author != "" {
		add("author ILIKE '%%' || $%d || '%%'", filter.Author)
	}
	if filter.ISBN != "" {
		add("isbn = $%d", filter.ISBN)
	}
	if filter.Genre != "" {
		add("genre = $%d", string(filter.Genre))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM books`+where, args...); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	query := fmt.Sprintf(`SELECT * FROM books%s ORDER BY title LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, filter.Size, filter.Page*filter.Size)

	var books []*Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	return newPage(books, filter, total), nil
}

func newPage(books []*Book, filter SearchFilter, total int64) *Page {
	totalPages := int(total) / filter.Size
	if int(total)%filter.Size != 0 {
		totalPages++
	}
	if books == nil {
		books = []*Book{}
	}
	return &Page{
		Content:       books,
		Number:        filter.Page,
		Size:          filter.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

func (r *postgresRepository) Update(ctx context.Context, b *Book) error {
	b.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE books
		SET title = :title, author = :author, isbn = :isbn,
		    publication_year = :publication_year, genre = :genre,
		    stock = :stock, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, b)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.Conflictf("ISBN already exists: %s", b.ISBN)
		}
		return fmt.Errorf("update book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("Book not found with id: %s", b.ID)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("Book not found with id: %s", id)
	}
	return nil
}

func (r *postgresRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`, isbn, excludeID)
	if err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) DecrementStock(ctx context.Context, id uuid.UUID) (*Book, error) {
	b := &Book{}
	err := r.db.GetContext(ctx, b, `
		UPDATE books
		SET stock = stock - 1, updated_at = NOW()
		WHERE id = $1 AND stock > 0
		RETURNING *
	`, id)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	// No row matched: either the book is unknown or its stock is zero.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, apperr.Conflictf("Book is out of stock: %s", id)
}

func (r *postgresRepository) IncrementStock(ctx context.Context, id uuid.UUID) (*Book, error) {
	b := &Book{}
	err := r.db.GetContext(ctx, b, `
		UPDATE books
		SET stock = stock + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("Book not found with id: %s", id)
		}
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return b, nil
}

// internal/borrowing/repository.go
package borrowing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libris/internal/apperr"
)

// Repository persists borrowings.
type Repository interface {
	Create(ctx context.Context, b *Borrowing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Borrowing, error)
	List(ctx context.Context) ([]*Borrowing, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Borrowing, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*Borrowing, error)

	// MarkReturned sets the return date of an open borrowing. A borrowing
	// whose return date is already set is left untouched and reported as a
	// business-rule violation.
	MarkReturned(ctx context.Context, id uuid.UUID, returnDate time.Time) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a postgres-backed borrowing repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, b *Borrowing) error {
	query := `
		INSERT INTO borrowings (id, user_id, book_id, borrow_date, due_date, return_date)
		VALUES (:id, :user_id, :book_id, :borrow_date, :due_date, :return_date)
	`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("insert borrowing: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Borrowing, error) {
	b := &Borrowing{}
	err := r.db.GetContext(ctx, b, `SELECT * FROM borrowings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("Borrowing not found with id: %s", id)
		}
		return nil, fmt.Errorf("get borrowing: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*Borrowing, error) {
	var borrowings []*Borrowing
	err := r.db.SelectContext(ctx, &borrowings, `SELECT * FROM borrowings ORDER BY borrow_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list borrowings: %w", err)
	}
	return borrowings, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Borrowing, error) {
	var borrowings []*Borrowing
	err := r.db.SelectContext(ctx, &borrowings,
		`SELECT * FROM borrowings WHERE user_id = $1 ORDER BY borrow_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list borrowings by user: %w", err)
	}
	return borrowings, nil
}

func (r *postgresRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*Borrowing, error) {
	var borrowings []*Borrowing
	err := r.db.SelectContext(ctx, &borrowings,
		`SELECT * FROM borrowings WHERE due_date < $1 AND return_date IS NULL ORDER BY due_date`, asOf)
	if err != nil {
		return nil, fmt.Errorf("list overdue borrowings: %w", err)
	}
	return borrowings, nil
}

func (r *postgresRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnDate time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE borrowings
		SET return_date = $1
		WHERE id = $2 AND return_date IS NULL
	`, returnDate, id)
	if err != nil {
		return fmt.Errorf("mark returned: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperr.Invalidf("Book is already returned")
	}
	return nil
}

// internal/borrowing/domain.go
package borrowing

import (
	"time"

	"github.com/google/uuid"
)

// LoanPeriodDays is the fixed loan policy: due date is always the borrow
// date plus this many days, derived once at creation and never recomputed.
const LoanPeriodDays = 14

// Borrowing records one book loan. A nil ReturnDate means the book is
// still out; once set it is never cleared or changed.
type Borrowing struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	BookID     uuid.UUID  `json:"book_id" db:"book_id"`
	BorrowDate time.Time  `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty" db:"return_date"`
}

// Returned reports whether the loan has been closed.
func (b *Borrowing) Returned() bool {
	return b.ReturnDate != nil
}

// Overdue reports whether the loan is open past its due date.
func (b *Borrowing) Overdue(asOf time.Time) bool {
	return !b.Returned() && b.DueDate.Before(asOf)
}

// Request carries the fields to create a borrowing.
type Request struct {
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`
}

// Validate reports per-field problems with the request.
func (r Request) Validate() map[string]string {
	errs := map[string]string{}
	if r.UserID == uuid.Nil {
		errs["user_id"] = "User ID is required"
	}
	if r.BookID == uuid.Nil {
		errs["book_id"] = "Book ID is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// today returns the current UTC calendar date. Borrow, due, and return
// dates are dates, not instants.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

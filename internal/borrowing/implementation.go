// internal/borrowing/implementation.go
package borrowing

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/apperr"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	books  BookGateway
	users  UserGateway
	tracer trace.Tracer
}

// NewService creates a new borrowing service instance.
func NewService(repo Repository, books BookGateway, users UserGateway) Service {
	return &service{
		repo:   repo,
		books:  books,
		users:  users,
		tracer: otel.Tracer("libris/borrowing"),
	}
}

// Borrow orchestrates the borrow workflow across the user and book
// services. The local record is written only after the remote stock
// decrement succeeded, so a borrowing never exists for a book that was not
// actually reserved. If the local write then fails, the decrement is
// compensated by restoring the stock.
func (s *service) Borrow(ctx context.Context, req Request) (*Borrowing, error) {
	ctx, span := s.tracer.Start(ctx, "borrowing.borrow",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID.String()),
			attribute.String("book.id", req.BookID.String()),
		),
	)
	defer span.End()

	if errs := req.Validate(); errs != nil {
		return nil, apperr.Validation(errs)
	}

	// Step 1: confirm the user exists.
	if err := s.users.CheckUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	// Step 2: confirm the book exists.
	bk, err := s.books.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	// Step 3: reserve a copy. A conflict means stock is already zero.
	if err := s.books.DecreaseStock(ctx, req.BookID); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			span.SetAttributes(attribute.Bool("borrow.out_of_stock", true))
			return nil, apperr.Conflictf("Book is out of stock: %s", bk.Title)
		}
		return nil, err
	}

	// Step 4: persist the borrowing, compensating the decrement on failure.
	borrowDate := today()
	b := &Borrowing{
		ID:         uuid.New(),
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: borrowDate,
		DueDate:    borrowDate.AddDate(0, 0, LoanPeriodDays),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		span.SetAttributes(attribute.Bool("borrow.compensated", true))
		log.Printf("Compensating failed borrow: restoring stock for book %s", req.BookID)
		if cerr := s.books.IncreaseStock(ctx, req.BookID); cerr != nil {
			log.Printf("Failed to restore stock for book %s: %v", req.BookID, cerr)
		}
		return nil, fmt.Errorf("create borrowing: %w", err)
	}

	return b, nil
}

// Return closes a borrowing. Restoring the book's stock is best-effort:
// a failure there is logged, not surfaced, since the return itself has
// already been recorded.
func (s *service) Return(ctx context.Context, id uuid.UUID) (*Borrowing, error) {
	ctx, span := s.tracer.Start(ctx, "borrowing.return",
		trace.WithAttributes(attribute.String("borrowing.id", id.String())))
	defer span.End()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Returned() {
		return nil, apperr.Invalidf("Book is already returned")
	}

	returnDate := today()
	if err := s.repo.MarkReturned(ctx, id, returnDate); err != nil {
		return nil, err
	}
	b.ReturnDate = &returnDate

	if err := s.books.IncreaseStock(ctx, b.BookID); err != nil {
		log.Printf("Failed to restore stock for book %s after return: %v", b.BookID, err)
	}

	return b, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Borrowing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetAll(ctx context.Context) ([]*Borrowing, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) ([]*Borrowing, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetOverdue(ctx context.Context) ([]*Borrowing, error) {
	return s.repo.ListOverdue(ctx, today())
}

// OverdueReport aggregates open, past-due borrowings per user. Pure read,
// deterministic for a given data snapshot.
func (s *service) OverdueReport(ctx context.Context) (string, error) {
	overdue, err := s.repo.ListOverdue(ctx, today())
	if err != nil {
		return "", err
	}

	counts := map[uuid.UUID]int{}
	for _, b := range overdue {
		counts[b.UserID]++
	}

	userIDs := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool {
		return userIDs[i].String() < userIDs[j].String()
	})

	var report strings.Builder
	fmt.Fprintf(&report, "OVERDUE BOOK REPORT\n")
	fmt.Fprintf(&report, "-----------------------------\n")
	fmt.Fprintf(&report, "Total Overdue Borrowings: %d\n", len(overdue))
	fmt.Fprintf(&report, "Number of Unique Users: %d\n", len(counts))
	fmt.Fprintf(&report, "Last Generated: %s\n\n", today().Format(time.DateOnly))
	fmt.Fprintf(&report, "Per User Breakdown:\n")
	for _, id := range userIDs {
		fmt.Fprintf(&report, "- User ID: %s -> Overdue Books: %d\n", id, counts[id])
	}

	return report.String(), nil
}

// internal/borrowing/implementation_test.go
package borrowing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/apperr"
	"libris/internal/book"
)

// memRepository is an in-memory Repository for exercising the
// orchestration without postgres.
type memRepository struct {
	mu         sync.Mutex
	borrowings map[uuid.UUID]*Borrowing
	failCreate error
}

func newMemRepository() *memRepository {
	return &memRepository{borrowings: make(map[uuid.UUID]*Borrowing)}
}

func (r *memRepository) Create(_ context.Context, b *Borrowing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	clone := *b
	r.borrowings[b.ID] = &clone
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id uuid.UUID) (*Borrowing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.borrowings[id]
	if !ok {
		return nil, apperr.NotFoundf("Borrowing not found with id: %s", id)
	}
	clone := *b
	return &clone, nil
}

func (r *memRepository) List(_ context.Context) ([]*Borrowing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Borrowing, 0, len(r.borrowings))
	for _, b := range r.borrowings {
		clone := *b
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*Borrowing, error) {
	all, _ := r.List(context.Background())
	var out []*Borrowing
	for _, b := range all {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepository) ListOverdue(_ context.Context, asOf time.Time) ([]*Borrowing, error) {
	all, _ := r.List(context.Background())
	var out []*Borrowing
	for _, b := range all {
		if b.Overdue(asOf) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepository) MarkReturned(_ context.Context, id uuid.UUID, returnDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.borrowings[id]
	if !ok {
		return apperr.NotFoundf("Borrowing not found with id: %s", id)
	}
	if b.ReturnDate != nil {
		return apperr.Invalidf("Book is already returned")
	}
	b.ReturnDate = &returnDate
	return nil
}

// fakeBookGateway records stock movements so orchestration side effects
// can be asserted.
type fakeBookGateway struct {
	mu        sync.Mutex
	books     map[uuid.UUID]*book.Book
	decreases int
	increases int
}

func newFakeBookGateway() *fakeBookGateway {
	return &fakeBookGateway{books: make(map[uuid.UUID]*book.Book)}
}

func (g *fakeBookGateway) add(title string, stock int) uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := uuid.New()
	g.books[id] = &book.Book{ID: id, Title: title, Stock: stock}
	return id
}

func (g *fakeBookGateway) stock(id uuid.UUID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.books[id].Stock
}

func (g *fakeBookGateway) GetBook(_ context.Context, id uuid.UUID) (*book.Book, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.books[id]
	if !ok {
		return nil, apperr.NotFoundf("Book not found with id: %s", id)
	}
	clone := *b
	return &clone, nil
}

func (g *fakeBookGateway) DecreaseStock(_ context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.books[id]
	if !ok {
		return apperr.NotFoundf("Book not found with id: %s", id)
	}
	if b.Stock <= 0 {
		return apperr.Conflictf("Book is out of stock: %s", id)
	}
	b.Stock--
	g.decreases++
	return nil
}

func (g *fakeBookGateway) IncreaseStock(_ context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.books[id]
	if !ok {
		return apperr.NotFoundf("Book not found with id: %s", id)
	}
	b.Stock++
	g.increases++
	return nil
}

type fakeUserGateway struct {
	users map[uuid.UUID]struct{}
}

func newFakeUserGateway() *fakeUserGateway {
	return &fakeUserGateway{users: make(map[uuid.UUID]struct{})}
}

func (g *fakeUserGateway) add() uuid.UUID {
	id := uuid.New()
	g.users[id] = struct{}{}
	return id
}

func (g *fakeUserGateway) CheckUser(_ context.Context, id uuid.UUID) error {
	if _, ok := g.users[id]; !ok {
		return apperr.NotFoundf("User not found with id: %s", id)
	}
	return nil
}

type fixture struct {
	svc   Service
	repo  *memRepository
	books *fakeBookGateway
	users *fakeUserGateway
}

func newFixture() *fixture {
	repo := newMemRepository()
	books := newFakeBookGateway()
	users := newFakeUserGateway()
	return &fixture{
		svc:   NewService(repo, books, users),
		repo:  repo,
		books: books,
		users: users,
	}
}

func TestBorrowHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := f.users.add()
	bookID := f.books.add("Dune", 2)

	b, err := f.svc.Borrow(ctx, Request{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	assert.Equal(t, userID, b.UserID)
	assert.Equal(t, bookID, b.BookID)
	assert.Nil(t, b.ReturnDate)
	assert.Equal(t, b.BorrowDate.AddDate(0, 0, LoanPeriodDays), b.DueDate)
	assert.Equal(t, 1, f.books.stock(bookID))

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, stored.ID)
}

func TestBorrowUnknownUserCreatesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bookID := f.books.add("Dune", 2)

	_, err := f.svc.Borrow(ctx, Request{UserID: uuid.New(), BookID: bookID})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	all, _ := f.repo.List(ctx)
	assert.Empty(t, all)
	assert.Equal(t, 2, f.books.stock(bookID))
}

func TestBorrowUnknownBookCreatesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := f.users.add()

	_, err := f.svc.Borrow(ctx, Request{UserID: userID, BookID: uuid.New()})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	all, _ := f.repo.List(ctx)
	assert.Empty(t, all)
	assert.Equal(t, 0, f.books.decreases)
}

func TestBorrowOutOfStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := f.users.add()
	bookID := f.books.add("Dune", 0)

	_, err := f.svc.Borrow(ctx, Request{UserID: userID, BookID: bookID})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Book is out of stock: Dune", apperr.MessageOf(err))

	all, _ := f.repo.List(ctx)
	assert.Empty(t, all)
	assert.Equal(t, 0, f.books.stock(bookID))
}

func TestBorrowValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Borrow(context.Background(), Request{})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "user_id")
	assert.Contains(t, fields, "book_id")
}

func TestBorrowCompensatesWhenPersistFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := f.users.add()
	bookID := f.books.add("Dune", 2)
	f.repo.failCreate = errors.New("connection reset")

	_, err := f.svc.Borrow(ctx, Request{UserID: userID, BookID: bookID})
	require.Error(t, err)

	// The reserved copy was handed back.
	assert.Equal(t, 2, f.books.stock(bookID))
	assert.Equal(t, 1, f.books.decreases)
	assert.Equal(t, 1, f.books.increases)
}

func TestReturnRestoresStockOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := f.users.add()
	bookID := f.books.add("Dune", 1)

	b, err := f.svc.Borrow(ctx, Request{UserID: userID, BookID: bookID})
	require.NoError(t, err)
	require.Equal(t, 0, f.books.stock(bookID))

	returned, err := f.svc.Return(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, 1, f.books.stock(bookID))

	// A second return fails and leaves the record and stock alone.
	_, err = f.svc.Return(ctx, b.ID)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.Equal(t, "Book is already returned", apperr.MessageOf(err))
	assert.Equal(t, 1, f.books.stock(bookID))

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *returned.ReturnDate, *stored.ReturnDate)
}

func TestReturnUnknownBorrowing(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Return(context.Background(), uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestOverdueReport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	heavy := uuid.New()
	light := uuid.New()
	past := today().AddDate(0, 0, -30)

	for _, userID := range []uuid.UUID{heavy, heavy, light} {
		require.NoError(t, f.repo.Create(ctx, &Borrowing{
			ID:         uuid.New(),
			UserID:     userID,
			BookID:     uuid.New(),
			BorrowDate: past,
			DueDate:    past.AddDate(0, 0, LoanPeriodDays),
		}))
	}

	// A returned loan never counts as overdue.
	rd := today()
	require.NoError(t, f.repo.Create(ctx, &Borrowing{
		ID:         uuid.New(),
		UserID:     light,
		BookID:     uuid.New(),
		BorrowDate: past,
		DueDate:    past.AddDate(0, 0, LoanPeriodDays),
		ReturnDate: &rd,
	}))

	report, err := f.svc.OverdueReport(ctx)
	require.NoError(t, err)

	assert.Contains(t, report, "OVERDUE BOOK REPORT")
	assert.Contains(t, report, "Total Overdue Borrowings: 3")
	assert.Contains(t, report, "Number of Unique Users: 2")
	assert.Contains(t, report, fmt.Sprintf("- User ID: %s -> Overdue Books: 2", heavy))
	assert.Contains(t, report, fmt.Sprintf("- User ID: %s -> Overdue Books: 1", light))
}

func TestOverdueExcludesFutureDueDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := f.users.add()
	bookID := f.books.add("Dune", 1)

	_, err := f.svc.Borrow(ctx, Request{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	overdue, err := f.svc.GetOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

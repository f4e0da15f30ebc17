// internal/book/implementation_test.go
package book

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"libris/internal/apperr"
)

// memRepository is an in-memory Repository for exercising the service
// without postgres.
type memRepository struct {
	mu    sync.Mutex
	books map[uuid.UUID]*Book
}

func newMemRepository() *memRepository {
	return &memRepository{books: make(map[uuid.UUID]*Book)}
}

func (r *memRepository) Create(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.books {
		if existing.ISBN == b.ISBN {
			return apperr.Conflictf("ISBN already exists: %s", b.ISBN)
		}
	}
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id uuid.UUID) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, apperr.NotFoundf("Book not found with id: %s", id)
	}
	clone := *b
	return &clone, nil
}

func (r *memRepository) List(_ context.Context) ([]*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Book, 0, len(r.books))
	for _, b := range r.books {
		clone := *b
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *memRepository) Search(_ context.Context, filter SearchFilter) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*Book
	for _, b := range r.books {
		if filter.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(filter.Author)) {
			continue
		}
		if filter.ISBN != "" && b.ISBN != filter.ISBN {
			continue
		}
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		clone := *b
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := int64(len(matched))
	start := filter.Page * filter.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Size
	if end > len(matched) {
		end = len(matched)
	}
	return newPage(matched[start:end], filter, total), nil
}

func (r *memRepository) Update(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return apperr.NotFoundf("Book not found with id: %s", b.ID)
	}
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *memRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return apperr.NotFoundf("Book not found with id: %s", id)
	}
	delete(r.books, id)
	return nil
}

func (r *memRepository) ExistsByISBN(_ context.Context, isbn string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepository) DecrementStock(_ context.Context, id uuid.UUID) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, apperr.NotFoundf("Book not found with id: %s", id)
	}
	if b.Stock <= 0 {
		return nil, apperr.Conflictf("Book is out of stock: %s", id)
	}
	b.Stock--
	clone := *b
	return &clone, nil
}

func (r *memRepository) IncrementStock(_ context.Context, id uuid.UUID) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, apperr.NotFoundf("Book not found with id: %s", id)
	}
	b.Stock++
	clone := *b
	return &clone, nil
}

func validRequest() Request {
	return Request{
		Title:           "The Left Hand of Darkness",
		Author:          "Ursula K. Le Guin",
		ISBN:            "9780441478125",
		PublicationYear: 1969,
		Genre:           GenreScienceFiction,
		Stock:           3,
	}
}

func newTestService(t *testing.T) (Service, *memRepository, *StockStream) {
	t.Helper()
	repo := newMemRepository()
	stream := NewStockStream()
	t.Cleanup(stream.Close)
	return NewService(repo, stream), repo, stream
}

func TestCreateRejectsDuplicateISBN(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validRequest())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateRejectsInvalidRequest(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validRequest()
	req.Title = ""
	req.ISBN = "123"

	_, err := svc.Create(context.Background(), req)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "isbn")
}

func TestDecreaseStockAtZeroFailsAndDoesNotMutate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := validRequest()
	req.Stock = 1
	b, err := svc.Create(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.DecreaseStock(ctx, b.ID))

	got, err := svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	err = svc.DecreaseStock(ctx, b.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err = svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestStockAdjustmentsPublishEvents(t *testing.T) {
	svc, _, stream := newTestService(t)
	ctx := context.Background()

	events, cancel := stream.Subscribe()
	defer cancel()

	b, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DecreaseStock(ctx, b.ID))
	require.NoError(t, svc.IncreaseStock(ctx, b.ID))

	first := <-events
	assert.Equal(t, b.ID, first.BookID)
	assert.Equal(t, 2, first.Stock)

	second := <-events
	assert.Equal(t, 3, second.Stock)
}

func TestSearchPaginates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i, title := range []string{"Dune", "Dune Messiah", "Children of Dune"} {
		req := validRequest()
		req.Title = title
		req.ISBN = req.ISBN[:12] + string(rune('0'+i))
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	page, err := svc.Search(ctx, SearchFilter{Title: "dune", Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 2)

	page, err = svc.Search(ctx, SearchFilter{Title: "dune", Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
}

func TestUpdateRejectsISBNOfOtherBook(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.ISBN = "9780441478126"
	other, err := svc.Create(ctx, second)
	require.NoError(t, err)

	update := validRequest()
	update.ISBN = first.ISBN
	_, err = svc.Update(ctx, other.ID, update)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

// Stock never goes negative under any sequence of increase/decrease
// operations, and a decrement at zero always reports a conflict.
func TestStockNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		repo := newMemRepository()
		stream := NewStockStream()
		defer stream.Close()
		svc := NewService(repo, stream)
		ctx := context.Background()

		req := validRequest()
		req.Stock = rapid.IntRange(0, 3).Draw(t, "initialStock")
		b, err := svc.Create(ctx, req)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		expected := req.Stock
		ops := rapid.SliceOfN(rapid.Bool(), 0, 40).Draw(t, "ops")
		for _, increase := range ops {
			if increase {
				if err := svc.IncreaseStock(ctx, b.ID); err != nil {
					t.Fatalf("increase: %v", err)
				}
				expected++
				continue
			}

			err := svc.DecreaseStock(ctx, b.ID)
			if expected == 0 {
				if apperr.KindOf(err) != apperr.KindConflict {
					t.Fatalf("decrement at zero: want conflict, got %v", err)
				}
			} else {
				if err != nil {
					t.Fatalf("decrease: %v", err)
				}
				expected--
			}

			got, err := svc.GetByID(ctx, b.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Stock < 0 {
				t.Fatalf("stock went negative: %d", got.Stock)
			}
			if got.Stock != expected {
				t.Fatalf("stock drifted: got %d, want %d", got.Stock, expected)
			}
		}
	})
}

func TestValidateRequestYearBounds(t *testing.T) {
	req := validRequest()
	req.PublicationYear = 1300
	fields := req.Validate()
	assert.Contains(t, fields, "publication_year")

	req.PublicationYear = time.Now().Year() + 1
	fields = req.Validate()
	assert.Contains(t, fields, "publication_year")

	req.PublicationYear = time.Now().Year()
	assert.Nil(t, req.Validate())
}

// internal/clients/book_client.go
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/apperr"
	"libris/internal/auth"
	"libris/internal/book"
)

// BookClient calls the book service. Calls run through a circuit breaker:
// once the book service has failed repeatedly, calls fail fast with an
// unavailable result instead of piling up on a dead service.
type BookClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
}

func NewBookClient(baseURL string) *BookClient {
	return &BookClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker:    newBreaker("book-service"),
		tracer:     otel.Tracer("libris/clients"),
	}
}

// GetBook fetches a book by ID.
func (c *BookClient) GetBook(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	ctx, span := c.tracer.Start(ctx, "clients.book.get",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/books/%s", c.baseURL, id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		b := &book.Book{}
		if err := json.NewDecoder(resp.Body).Decode(b); err != nil {
			return nil, fmt.Errorf("decode book: %w", err)
		}
		return b, nil
	case http.StatusNotFound:
		return nil, apperr.NotFoundf("Book not found with id: %s", id)
	default:
		return nil, apperr.Unavailablef("Book service returned unexpected status %d", resp.StatusCode)
	}
}

// DecreaseStock decrements the remote stock count. A conflict means the
// book is out of stock; the caller must not proceed with the borrow.
func (c *BookClient) DecreaseStock(ctx context.Context, id uuid.UUID) error {
	ctx, span := c.tracer.Start(ctx, "clients.book.decrease_stock",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	return c.adjustStock(ctx, id, "decrease-stock")
}

// IncreaseStock increments the remote stock count.
func (c *BookClient) IncreaseStock(ctx context.Context, id uuid.UUID) error {
	ctx, span := c.tracer.Start(ctx, "clients.book.increase_stock",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	return c.adjustStock(ctx, id, "increase-stock")
}

func (c *BookClient) adjustStock(ctx context.Context, id uuid.UUID, op string) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/api/v1/books/%s/%s", c.baseURL, id, op))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusConflict:
		return apperr.Conflictf("Book is out of stock: %s", id)
	case http.StatusNotFound:
		return apperr.NotFoundf("Book not found with id: %s", id)
	default:
		return apperr.Unavailablef("Book service returned unexpected status %d", resp.StatusCode)
	}
}

func (c *BookClient) do(ctx context.Context, method, url string) (*http.Response, error) {
	return execute(ctx, c.breaker, c.httpClient, method, url)
}

// execute runs one HTTP call through the breaker. Transport failures and
// 5xx responses count as breaker failures; business statuses do not.
func execute(ctx context.Context, breaker *gobreaker.CircuitBreaker, client *http.Client, method, url string) (*http.Response, error) {
	res, err := breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, err
		}
		if token, ok := auth.TokenFromContext(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, fmt.Errorf("remote returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.Wrap(apperr.KindUnavailable, err, "Remote service unavailable (circuit open)")
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "Remote service unavailable")
	}
	return res.(*http.Response), nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

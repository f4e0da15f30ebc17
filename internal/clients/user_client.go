// internal/clients/user_client.go
package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/apperr"
)

// UserClient calls the user service.
type UserClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
}

func NewUserClient(baseURL string) *UserClient {
	return &UserClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker:    newBreaker("user-service"),
		tracer:     otel.Tracer("libris/clients"),
	}
}

// CheckUser confirms the user exists before a borrowing is recorded.
func (c *UserClient) CheckUser(ctx context.Context, id uuid.UUID) error {
	ctx, span := c.tracer.Start(ctx, "clients.user.check",
		trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()

	resp, err := execute(ctx, c.breaker, c.httpClient, http.MethodGet,
		fmt.Sprintf("%s/api/v1/users/%s/check", c.baseURL, id))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return apperr.NotFoundf("User not found with id: %s", id)
	default:
		return apperr.Unavailablef("User service returned unexpected status %d", resp.StatusCode)
	}
}

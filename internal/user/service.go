// internal/user/service.go
package user

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/auth"
)

// Service defines the interface for the auth/user service.
type Service interface {
	Register(ctx context.Context, req RegisterRequest, role auth.Role) (*User, error)
	Login(ctx context.Context, req LoginRequest) (string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateRequest) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CheckUser(ctx context.Context, id uuid.UUID) error
}

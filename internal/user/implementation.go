// internal/user/implementation.go
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"libris/internal/apperr"
	"libris/internal/auth"
)

// service implements the Service interface.
type service struct {
	repo            Repository
	tokens          *auth.TokenService
	registerLimiter *rate.Limiter
	loginLimiter    *rate.Limiter
}

// NewService creates a new auth/user service instance.
func NewService(repo Repository, tokens *auth.TokenService) Service {
	return &service{
		repo:            repo,
		tokens:          tokens,
		registerLimiter: rate.NewLimiter(rate.Every(time.Minute/20), 20),
		loginLimiter:    rate.NewLimiter(rate.Every(time.Minute/30), 30),
	}
}

// Register creates a new user with the given role. Email and phone
// uniqueness is checked up front so both problems surface in one response.
func (s *service) Register(ctx context.Context, req RegisterRequest, role auth.Role) (*User, error) {
	if !s.registerLimiter.Allow() {
		return nil, apperr.RateLimitedf("Too many registration attempts, try again later")
	}

	if errs := req.Validate(); errs != nil {
		return nil, apperr.Validation(errs)
	}

	if err := s.checkUniqueness(ctx, req.Email, req.Phone); err != nil {
		return nil, err
	}

	hash, salt, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
		Name:         req.Name,
		Surname:      req.Surname,
		Phone:        req.Phone,
		Address:      req.Address,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) checkUniqueness(ctx context.Context, email, phone string) error {
	errs := map[string]string{}

	emailTaken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if emailTaken {
		errs["email"] = "Email already exists: " + email
	}

	phoneTaken, err := s.repo.ExistsByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if phoneTaken {
		errs["phone"] = "Phone already exists: " + phone
	}

	if len(errs) > 0 {
		return apperr.Validation(errs)
	}
	return nil
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, req LoginRequest) (string, error) {
	if !s.loginLimiter.Allow() {
		return "", apperr.RateLimitedf("Too many login attempts, try again later")
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", apperr.Unauthorizedf("Invalid email or password")
		}
		return "", err
	}

	ok, err := verifyPassword(req.Password, u.Salt, u.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", apperr.Unauthorizedf("Invalid email or password")
	}

	token, err := s.tokens.Generate(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateRequest) (*User, error) {
	if errs := req.Validate(); errs != nil {
		return nil, apperr.Validation(errs)
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != u.Phone {
		phoneTaken, err := s.repo.ExistsByPhone(ctx, req.Phone)
		if err != nil {
			return nil, err
		}
		if phoneTaken {
			return nil, apperr.Validation(map[string]string{"phone": "Phone already exists: " + req.Phone})
		}
	}

	u.Name = req.Name
	u.Surname = req.Surname
	u.Phone = req.Phone
	u.Address = req.Address

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CheckUser reports whether the user exists. Used by the borrowing service
// before it creates a borrowing record.
func (s *service) CheckUser(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetByID(ctx, id)
	return err
}

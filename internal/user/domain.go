// internal/user/domain.go
package user

import (
	"net/mail"
	"time"

	"github.com/google/uuid"

	"libris/internal/auth"
)

// User represents a registered library user.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	Role         auth.Role `json:"role" db:"role"`
	Name         string    `json:"name" db:"name"`
	Surname      string    `json:"surname" db:"surname"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address,omitempty" db:"address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest carries the fields required to register a new user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Validate reports per-field problems with the request.
func (r RegisterRequest) Validate() map[string]string {
	errs := map[string]string{}

	switch {
	case r.Email == "":
		errs["email"] = "Email cannot be empty"
	case len(r.Email) > 75:
		errs["email"] = "Email cannot exceed 75 characters"
	default:
		if _, err := mail.ParseAddress(r.Email); err != nil {
			errs["email"] = "Please provide a valid email address"
		}
	}

	if len(r.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters"
	}

	switch {
	case r.Name == "":
		errs["name"] = "Name cannot be empty"
	case len(r.Name) > 30:
		errs["name"] = "Name cannot exceed 30 characters"
	}

	switch {
	case r.Surname == "":
		errs["surname"] = "Surname cannot be empty"
	case len(r.Surname) > 30:
		errs["surname"] = "Surname cannot exceed 30 characters"
	}

	switch {
	case r.Phone == "":
		errs["phone"] = "Phone number cannot be empty"
	case len(r.Phone) > 20:
		errs["phone"] = "Phone number cannot exceed 20 characters"
	}

	if len(r.Address) > 150 {
		errs["address"] = "Address cannot exceed 150 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateRequest carries the mutable profile fields of a user.
type UpdateRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r UpdateRequest) Validate() map[string]string {
	errs := map[string]string{}

	switch {
	case r.Name == "":
		errs["name"] = "Name cannot be empty"
	case len(r.Name) > 30:
		errs["name"] = "Name cannot exceed 30 characters"
	}

	switch {
	case r.Surname == "":
		errs["surname"] = "Surname cannot be empty"
	case len(r.Surname) > 30:
		errs["surname"] = "Surname cannot exceed 30 characters"
	}

	switch {
	case r.Phone == "":
		errs["phone"] = "Phone number cannot be empty"
	case len(r.Phone) > 20:
		errs["phone"] = "Phone number cannot exceed 20 characters"
	}

	if len(r.Address) > 150 {
		errs["address"] = "Address cannot exceed 150 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

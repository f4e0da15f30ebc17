// internal/user/seed.go
package user

import (
	"context"
	"log"

	"libris/internal/apperr"
	"libris/internal/auth"
)

// EnsureFirstLibrarian creates a default librarian account if none exists,
// so a fresh deployment has an account that can register further librarians.
func EnsureFirstLibrarian(ctx context.Context, svc Service, email, password string) error {
	req := RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Admin",
		Surname:  "User",
		Phone:    "0000000000",
		Address:  "Default Library Address",
	}

	if _, err := svc.Register(ctx, req, auth.RoleLibrarian); err != nil {
		if kindIsDuplicate(err) {
			return nil
		}
		return err
	}

	log.Printf("Default librarian user created: %s", email)
	return nil
}

func kindIsDuplicate(err error) bool {
	if apperr.KindOf(err) == apperr.KindConflict {
		return true
	}
	fields := apperr.FieldsOf(err)
	_, emailTaken := fields["email"]
	_, phoneTaken := fields["phone"]
	return emailTaken || phoneTaken
}

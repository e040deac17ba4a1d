// Package user holds the account aggregate created on first Google sign-in.
package user

import (
	"strings"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// Identity is the verified Google profile a user signs in with.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// User is an account (immutable value object).
type User struct {
	id        string
	googleSub string
	email     string
	name      string
	picture   string
	createdAt int64
}

// New creates a User from a verified identity. Subject and email are required.
func New(id string, ident Identity, createdAt int64) (User, error) {
	if ident.Subject == "" {
		return User{}, domain.NewValidationError("sub", "is required")
	}
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if email == "" {
		return User{}, domain.NewValidationError("email", "is required")
	}
	name := strings.TrimSpace(ident.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return User{
		id:        id,
		googleSub: ident.Subject,
		email:     email,
		name:      name,
		picture:   ident.Picture,
		createdAt: createdAt,
	}, nil
}

// Reconstruct creates a User without validation (storage hydration).
func Reconstruct(id, googleSub, email, name, picture string, createdAt int64) User {
	return User{id: id, googleSub: googleSub, email: email, name: name, picture: picture, createdAt: createdAt}
}

// WithProfile returns a copy refreshed from the latest Google profile.
// Identity fields (id, subject) never change.
func (u *User) WithProfile(ident Identity) User {
	next := *u
	if ident.Name != "" {
		next.name = ident.Name
	}
	if ident.Picture != "" {
		next.picture = ident.Picture
	}
	if ident.Email != "" {
		next.email = strings.ToLower(ident.Email)
	}
	return next
}

// ID returns the user identifier.
func (u *User) ID() string { return u.id }

// GoogleSub returns the stable Google account subject.
func (u *User) GoogleSub() string { return u.googleSub }

// Email returns the lowercased email address.
func (u *User) Email() string { return u.email }

// Name returns the display name.
func (u *User) Name() string { return u.name }

// Picture returns the avatar URL, if any.
func (u *User) Picture() string { return u.picture }

// CreatedAt returns the creation timestamp (unix millis).
func (u *User) CreatedAt() int64 { return u.createdAt }

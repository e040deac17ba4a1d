package auth

import (
	"context"

	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// UserRepository defines the storage contract for accounts.
type UserRepository interface {
	// Create links a new user to its Google subject. If the subject is already
	// linked, the existing user is returned instead and u is discarded.
	Create(ctx context.Context, u *domuser.User) (domuser.User, error)
	Save(ctx context.Context, u *domuser.User) error
	Get(ctx context.Context, id string) (domuser.User, error)
	GetBySubject(ctx context.Context, sub string) (domuser.User, error)
}

// IdentityVerifier turns a Google credential into a verified identity.
// Invalid credentials must be reported as domain.ErrUnauthorized.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, credential string) (domuser.Identity, error)
	ExchangeCode(ctx context.Context, code string) (domuser.Identity, error)
}

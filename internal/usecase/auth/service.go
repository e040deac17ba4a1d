// Package auth signs users in with Google and issues the service's own session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// DefaultTokenTTL is the session token lifetime.
const DefaultTokenTTL = 7 * 24 * time.Hour

const issuer = "lifeos"

// Claims are the session token claims. Subject is the user ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Session is the result of a successful sign-in.
type Session struct {
	Token string
	User  domuser.User
}

// Service handles sign-in and token verification.
type Service struct {
	users  UserRepository
	google IdentityVerifier
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

// New creates an auth service. An empty secret is rejected; ttl <= 0 means DefaultTokenTTL.
func New(users UserRepository, google IdentityVerifier, secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		users:  users,
		google: google,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// SignInWithIDToken verifies a Google ID token, creates the user on first sign-in and
// returns a session token.
func (s *Service) SignInWithIDToken(ctx context.Context, credential string) (Session, error) {
	if credential == "" {
		return Session{}, domain.NewValidationError("credential", "is required")
	}
	ident, err := s.google.VerifyIDToken(ctx, credential)
	if err != nil {
		return Session{}, fmt.Errorf("verify google token: %w", err)
	}
	return s.signIn(ctx, ident)
}

// SignInWithCode exchanges an OAuth authorization code for a verified identity and signs in.
func (s *Service) SignInWithCode(ctx context.Context, code string) (Session, error) {
	if code == "" {
		return Session{}, domain.NewValidationError("code", "is required")
	}
	ident, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return Session{}, fmt.Errorf("exchange google code: %w", err)
	}
	return s.signIn(ctx, ident)
}

func (s *Service) signIn(ctx context.Context, ident domuser.Identity) (Session, error) {
	u, err := s.users.GetBySubject(ctx, ident.Subject)
	switch {
	case err == nil:
		u = u.WithProfile(ident)
		if err := s.users.Save(ctx, &u); err != nil {
			return Session{}, fmt.Errorf("save user: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		if u, err = s.register(ctx, ident); err != nil {
			return Session{}, err
		}
	default:
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.IssueToken(&u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// register creates the account on a first sign-in. A concurrent first sign-in for
// the same subject resolves to whichever account claimed the subject first.
func (s *Service) register(ctx context.Context, ident domuser.Identity) (domuser.User, error) {
	u, err := domuser.New(s.newID(), ident, s.now().UnixMilli())
	if err != nil {
		return domuser.User{}, fmt.Errorf("new user: %w", err)
	}
	owner, err := s.users.Create(ctx, &u)
	if err != nil {
		return domuser.User{}, fmt.Errorf("create user: %w", err)
	}
	return owner, nil
}

// IssueToken signs an HS256 session token for u.
func (s *Service) IssueToken(u *domuser.User) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate verifies a session token and loads its user. Any malformed, expired or
// foreign token, or one whose user no longer exists, yields domain.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (domuser.User, error) {
	if token == "" {
		return domuser.User{}, fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domuser.User{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return domuser.User{}, fmt.Errorf("token without subject: %w", domain.ErrUnauthorized)
	}

	u, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domuser.User{}, fmt.Errorf("token user: %w", domain.ErrUnauthorized)
		}
		return domuser.User{}, fmt.Errorf("load token user: %w", err)
	}
	return u, nil
}

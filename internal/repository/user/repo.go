// Package user persists accounts as hashes with a Google subject lookup key.
package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lifeos/internal/db"
	"github.com/kailas-cloud/lifeos/internal/domain"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

var (
	userKeyPrefix = domain.KeyPrefix + "user:"
	subKeyPrefix  = domain.KeyPrefix + "google_sub:"
)

// store is the consumer interface for users (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// Repo implements usecase/auth.UserRepository.
type Repo struct {
	store store
}

// New creates a user repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new user and links its Google subject to it. The hash is
// written before the subject is claimed with SET NX, so a claimed subject always
// resolves. When another sign-in claimed the subject first, the new hash is
// dropped and the existing user is returned.
func (r *Repo) Create(ctx context.Context, u *domuser.User) (domuser.User, error) {
	if err := r.Save(ctx, u); err != nil {
		return domuser.User{}, err
	}
	claimed, err := r.store.SetNX(ctx, subKeyPrefix+u.GoogleSub(), []byte(u.ID()))
	if err != nil {
		return domuser.User{}, fmt.Errorf("claim google subject: %w", err)
	}
	if claimed {
		return *u, nil
	}

	if err := r.store.Del(ctx, userKeyPrefix+u.ID()); err != nil {
		return domuser.User{}, fmt.Errorf("drop duplicate user %s: %w", u.ID(), err)
	}
	return r.GetBySubject(ctx, u.GoogleSub())
}

// Save writes the user's profile. The subject link is set once, by Create.
func (r *Repo) Save(ctx context.Context, u *domuser.User) error {
	key := userKeyPrefix + u.ID()
	fields := map[string]string{
		"google_sub": u.GoogleSub(),
		"email":      u.Email(),
		"name":       u.Name(),
		"picture":    u.Picture(),
		"created_at": strconv.FormatInt(u.CreatedAt(), 10),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a user by ID.
func (r *Repo) Get(ctx context.Context, id string) (domuser.User, error) {
	key := userKeyPrefix + id
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domuser.User{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domuser.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
	return domuser.Reconstruct(id, m["google_sub"], m["email"], m["name"], m["picture"], createdAt), nil
}

// GetBySubject returns the user linked to a Google account subject.
func (r *Repo) GetBySubject(ctx context.Context, sub string) (domuser.User, error) {
	raw, err := r.store.Get(ctx, subKeyPrefix+sub)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domuser.User{}, fmt.Errorf("google subject: %w", domain.ErrNotFound)
		}
		return domuser.User{}, fmt.Errorf("lookup google subject: %w", err)
	}
	return r.Get(ctx, string(raw))
}

// ListIDs returns the IDs of all stored users.
func (r *Repo) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, userKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, userKeyPrefix))
	}
	return ids, nil
}

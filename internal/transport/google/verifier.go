// Package google verifies Google sign-in credentials.
package google

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// Config holds Google OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	// RedirectURL must match the one the browser used; "postmessage" for the JS popup flow.
	RedirectURL string
	Logger      *zap.Logger
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// Verifier implements usecase/auth.IdentityVerifier.
type Verifier struct {
	clientID string
	oauth    *oauth2.Config
	validate validateFunc
	logger   *zap.Logger
}

// NewVerifier creates a Google credential verifier.
func NewVerifier(cfg *Config) *Verifier {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		clientID: cfg.ClientID,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		validate: idtoken.Validate,
		logger:   logger,
	}
}

// VerifyIDToken checks the token signature, expiry and audience against Google's keys.
func (v *Verifier) VerifyIDToken(ctx context.Context, credential string) (domuser.Identity, error) {
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		if ctx.Err() != nil {
			return domuser.Identity{}, ctx.Err() //nolint:wrapcheck // caller cancelled
		}
		v.logger.Debug("google id token rejected", zap.Error(err))
		return domuser.Identity{}, fmt.Errorf("%w: invalid google id token", domain.ErrUnauthorized)
	}
	return identityFromPayload(payload)
}

// ExchangeCode redeems an authorization code and verifies the returned ID token.
func (v *Verifier) ExchangeCode(ctx context.Context, code string) (domuser.Identity, error) {
	tok, err := v.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			v.logger.Debug("google code exchange rejected", zap.String("error_code", re.ErrorCode))
			return domuser.Identity{}, fmt.Errorf("%w: authorization code rejected", domain.ErrUnauthorized)
		}
		return domuser.Identity{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return domuser.Identity{}, fmt.Errorf("%w: token response has no id_token", domain.ErrUnauthorized)
	}
	return v.VerifyIDToken(ctx, raw)
}

func identityFromPayload(p *idtoken.Payload) (domuser.Identity, error) {
	if p.Subject == "" {
		return domuser.Identity{}, fmt.Errorf("%w: id token without subject", domain.ErrUnauthorized)
	}
	if verified, ok := p.Claims["email_verified"].(bool); ok && !verified {
		return domuser.Identity{}, fmt.Errorf("%w: google email not verified", domain.ErrUnauthorized)
	}
	return domuser.Identity{
		Subject: p.Subject,
		Email:   claim(p, "email"),
		Name:    claim(p, "name"),
		Picture: claim(p, "picture"),
	}, nil
}

func claim(p *idtoken.Payload, name string) string {
	s, _ := p.Claims[name].(string)
	return s
}

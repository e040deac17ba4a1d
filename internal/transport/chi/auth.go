package chi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
	logpkg "github.com/kailas-cloud/lifeos/internal/logger"
	authuc "github.com/kailas-cloud/lifeos/internal/usecase/auth"
)

type userCtxKey struct{}

// ContextWithUser stores the authenticated user in the context.
func ContextWithUser(ctx context.Context, u domuser.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the authenticated user placed by the auth middleware.
func UserFromContext(ctx context.Context) (domuser.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(domuser.User)
	return u, ok
}

// requestToken extracts the session token from the Authorization header,
// the legacy x-token header, or, when allowQuery is set, the token query parameter.
func requestToken(r *http.Request, allowQuery bool) string {
	const bearerPrefix = "Bearer "
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(h[len(bearerPrefix):])
		}
		return ""
	}
	if t := r.Header.Get("x-token"); t != "" {
		return t
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

// requireUser rejects requests without a valid session token and stores the user in the context.
func (s *Server) requireUser(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r, allowQuery)
			if token == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
				return
			}

			u, err := s.auth.Authenticate(r.Context(), token)
			if err != nil {
				s.handleDomainError(w, err)
				return
			}

			ctx := ContextWithUser(r.Context(), u)
			ctx = logpkg.With(ctx, zap.String("user_id", u.ID()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUserID is only valid behind requireUser.
func currentUserID(r *http.Request) string {
	u, _ := UserFromContext(r.Context())
	return u.ID()
}

type signInRequest struct {
	Credential string `json:"credential"`
	Code       string `json:"code"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// SignIn handles POST /auth/google with either an ID token credential or an authorization code.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		session authuc.Session
		err     error
	)
	switch {
	case req.Credential != "":
		session, err = s.auth.SignInWithIDToken(r.Context(), req.Credential)
	case req.Code != "":
		session, err = s.auth.SignInWithCode(r.Context(), req.Code)
	default:
		writeError(w, http.StatusBadRequest, codeValidationFailed, "credential or code is required")
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, User: toUserResponse(&session.User)})
}

// Me handles GET /auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserResponse(&u))
}

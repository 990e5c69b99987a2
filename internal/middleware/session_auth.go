package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/auth"
	"github.com/nomadshift/backend/internal/models"
)

type contextKey string

const (
	ctxUserKey    contextKey = "user"
	ctxProfileKey contextKey = "profile"
)

// SessionResolver turns a session token into its user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// SessionAuth authenticates requests by the session_token cookie or a Bearer
// token and puts the user into the request context.
func SessionAuth(resolver SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				apperrors.WriteError(w, r, log, apperrors.Unauthenticated("not authenticated"))
				return
			}
			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				apperrors.WriteError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// UserFromCtx returns the authenticated user or nil.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUserKey).(*models.User)
	return u
}

// WithUser returns a context carrying the given user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

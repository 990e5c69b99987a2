package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
)

// ProfileLookup returns the user's profile, or (nil, nil) when there is none.
type ProfileLookup interface {
	Lookup(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// LoadProfile attaches the authenticated user's profile, if any, to the
// context. It must run after SessionAuth.
func LoadProfile(lookup ProfileLookup, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromCtx(r.Context())
			if user == nil {
				apperrors.WriteError(w, r, log, apperrors.Unauthenticated("not authenticated"))
				return
			}
			p, err := lookup.Lookup(r.Context(), user.ID)
			if err != nil {
				apperrors.WriteError(w, r, log, fmt.Errorf("load profile: %w", err))
				return
			}
			ctx := r.Context()
			if p != nil {
				ctx = WithProfile(ctx, p)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose profile does not hold role. It must run after LoadProfile.
func RequireRole(role models.Role, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := ProfileFromCtx(r.Context())
			if p == nil || p.Role != role {
				apperrors.WriteError(w, r, log, apperrors.Unauthorized(fmt.Sprintf("a %s profile is required", role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProfileFromCtx returns the profile set by LoadProfile, or nil.
func ProfileFromCtx(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(ctxProfileKey).(*models.Profile)
	return p
}

// WithProfile returns a context carrying the given profile.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, ctxProfileKey, p)
}

package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/middleware"
	"github.com/nomadshift/backend/internal/models"
)

// BodyDecoder validates a request body against a named schema and decodes it.
// services.Validator implements it.
type BodyDecoder interface {
	Decode(ctx context.Context, schema string, r io.Reader, dst any) error
}

// pathID parses the {name} path segment. A malformed id cannot name an
// existing resource, so it is reported as not found.
func pathID(r *http.Request, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperrors.NotFound(what + " not found")
	}
	return id, nil
}

func currentUser(r *http.Request) (*models.User, error) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		return nil, apperrors.Unauthenticated("not authenticated")
	}
	return u, nil
}

// orEmpty keeps list endpoints from encoding null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

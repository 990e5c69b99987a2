package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nomadshift/backend/internal/apperrors"
)

const identityTimeout = 10 * time.Second

// Identity is what the external provider knows about a login.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IdentityProvider resolves an external session id into an Identity.
type IdentityProvider interface {
	Fetch(ctx context.Context, externalSessionID string) (*Identity, error)
}

// HTTPIdentityProvider calls GET {URL} with the X-Session-ID header.
type HTTPIdentityProvider struct {
	URL    string
	Client *http.Client
}

func NewHTTPIdentityProvider(url string) *HTTPIdentityProvider {
	return &HTTPIdentityProvider{URL: url, Client: &http.Client{Timeout: identityTimeout}}
}

func (p *HTTPIdentityProvider) Fetch(ctx context.Context, externalSessionID string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("X-Session-ID", externalSessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, apperrors.UpstreamUnavailable("identity provider unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, apperrors.Unauthenticated("invalid session")
	}
	var id Identity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&id); err != nil {
		return nil, apperrors.UpstreamUnavailable("identity provider returned an invalid response", err)
	}
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	if id.Email == "" {
		return nil, apperrors.Unauthenticated("identity has no email")
	}
	return &id, nil
}

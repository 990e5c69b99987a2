package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie that carries the session token.
const CookieName = "session_token"

// TokenFromRequest returns the session token from the cookie, falling back to
// an Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return extractBearer(r.Header.Get("Authorization"))
}

func extractBearer(h string) string {
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

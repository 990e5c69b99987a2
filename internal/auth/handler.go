package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/nomadshift/backend/internal/apperrors"
)

// BodyDecoder validates and decodes a request body against a named schema.
type BodyDecoder interface {
	Decode(ctx context.Context, schema string, r io.Reader, dst any) error
}

// SessionRequest is the body of POST /api/auth/session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

const sessionSchema = "auth_session"

type Handler struct {
	svc          Service
	decoder      BodyDecoder
	cookieSecure bool
	log          *slog.Logger
}

func NewHandler(svc Service, decoder BodyDecoder, cookieSecure bool, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, decoder: decoder, cookieSecure: cookieSecure, log: log}
}

// CreateSession exchanges an identity-provider session id, taken from the
// body or the X-Session-ID header, for a session cookie.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := h.decoder.Decode(r.Context(), sessionSchema, r.Body, &req); err != nil {
		apperrors.WriteError(w, r, h.log, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get("X-Session-ID")
	}
	login, err := h.svc.Exchange(r.Context(), req.SessionID)
	if err != nil {
		apperrors.WriteError(w, r, h.log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    login.Token,
		Path:     "/",
		MaxAge:   int(h.svc.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
	apperrors.WriteJSON(w, http.StatusOK, login)
}

// Logout revokes the current session, if any, and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), TokenFromRequest(r)); err != nil {
		apperrors.WriteError(w, r, h.log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

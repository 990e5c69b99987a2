package apperrors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as {"error": ..., "code": ...}. Server-side failures
// are logged with their cause; the cause never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	appErr := From(err)
	if appErr.HTTPCode >= http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "code", appErr.Code, "error", err)
	}
	WriteJSON(w, appErr.HTTPCode, appErr)
}

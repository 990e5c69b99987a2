package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := Conflict("already applied to this job")
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected conflict error to match ErrConflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("conflict error must not match ErrNotFound")
	}

	wrapped := fmt.Errorf("apply: %w", err)
	if !errors.Is(wrapped, ErrConflict) {
		t.Fatal("expected wrapped conflict to match ErrConflict")
	}
}

func TestFrom(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode Code
		wantHTTP int
	}{
		{"app error passes through", NotFound("job not found"), CodeNotFound, http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("ctx: %w", Unauthorized("nope")), CodeUnauthorized, http.StatusForbidden},
		{"plain error becomes internal", errors.New("connection reset"), CodeInternal, http.StatusInternalServerError},
		{"timeout", UpstreamTimeout("AI service timeout", nil), CodeUpstreamTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err)
			if got.Code != tc.wantCode {
				t.Errorf("code: got %q, want %q", got.Code, tc.wantCode)
			}
			if got.HTTPCode != tc.wantHTTP {
				t.Errorf("http code: got %d, want %d", got.HTTPCode, tc.wantHTTP)
			}
		})
	}
}

func TestMarshalJSON_HidesCause(t *testing.T) {
	err := Wrap(errors.New("pq: relation does not exist"), CodeInternal, "internal error", http.StatusInternalServerError)
	b, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("marshal: %v", mErr)
	}
	want := `{"error":"internal error","code":"internal_error"}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

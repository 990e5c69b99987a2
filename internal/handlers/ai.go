package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/rewrite"
	"github.com/nomadshift/backend/internal/services"
)

type Rewriter interface {
	Improve(ctx context.Context, req rewrite.Request) (*rewrite.Result, error)
}

var _ Rewriter = (*rewrite.Service)(nil)

type AIHandler struct {
	Rewriter Rewriter
	Decoder  BodyDecoder
	Logger   *slog.Logger
}

// ImproveDescription handles POST /api/ai/improve-description.
func (h *AIHandler) ImproveDescription(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUser(r); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var req rewrite.Request
	if err := h.Decoder.Decode(r.Context(), services.SchemaImproveDescription, r.Body, &req); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	res, err := h.Rewriter.Improve(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/services"
)

type ReviewsAPI interface {
	Submit(ctx context.Context, reviewerID, jobID uuid.UUID, in services.SubmitReviewInput) (*models.Review, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error)
}

var _ ReviewsAPI = (*services.ReviewService)(nil)

type ReviewHandler struct {
	Reviews ReviewsAPI
	Decoder BodyDecoder
	Logger  *slog.Logger
}

// Submit handles POST /api/jobs/{job_id}/review.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	jobID, err := pathID(r, "job_id", "job")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var in services.SubmitReviewInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaReview, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	rv, err := h.Reviews.Submit(r.Context(), user.ID, jobID, in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, rv)
}

// ListForUser handles GET /api/reviews/{user_id}.
func (h *ReviewHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id", "user")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	reviews, err := h.Reviews.ListForUser(r.Context(), userID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, orEmpty(reviews))
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/middleware"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/services"
)

type ProfilesAPI interface {
	SetRole(ctx context.Context, userID uuid.UUID, in services.SetRoleInput) (*models.User, error)
	OnboardWorker(ctx context.Context, userID uuid.UUID, in services.WorkerOnboardingInput) (*models.Profile, error)
	OnboardBusiness(ctx context.Context, userID uuid.UUID, in services.BusinessOnboardingInput) (*models.Profile, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

var _ ProfilesAPI = (*services.ProfileService)(nil)

// ProfileHandler serves role selection, onboarding, profiles and /api/auth/me.
type ProfileHandler struct {
	Profiles ProfilesAPI
	Decoder  BodyDecoder
	Logger   *slog.Logger
}

// AuthMe handles GET /api/auth/me. The profile is null until onboarding.
func (h *ProfileHandler) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"profile": middleware.ProfileFromCtx(r.Context()),
	})
}

// SetRole handles POST /api/user/set-role.
func (h *ProfileHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var in services.SetRoleInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaSetRole, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	updated, err := h.Profiles.SetRole(r.Context(), user.ID, in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Role set successfully",
		"role":    updated.Role,
		"user":    updated,
	})
}

// OnboardWorker handles POST /api/onboarding/worker.
func (h *ProfileHandler) OnboardWorker(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var in services.WorkerOnboardingInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaWorkerOnboarding, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	p, err := h.Profiles.OnboardWorker(r.Context(), user.ID, in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"message": "Onboarding completed", "profile": p})
}

// OnboardBusiness handles POST /api/onboarding/business.
func (h *ProfileHandler) OnboardBusiness(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var in services.BusinessOnboardingInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaBusinessOnboarding, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	p, err := h.Profiles.OnboardBusiness(r.Context(), user.ID, in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"message": "Onboarding completed", "profile": p})
}

// Me handles GET /api/profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	p, err := h.Profiles.Me(r.Context(), user.ID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, p)
}

// Get handles GET /api/profile/{user_id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id", "profile")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	p, err := h.Profiles.Get(r.Context(), userID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, p)
}

package handlers

import (
	"net/http"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
)

// APIVersion is reported by GET /api/.
const APIVersion = "1.0.0"

func Root(w http.ResponseWriter, _ *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"message": "NomadShift API", "version": APIVersion})
}

func ListCategories(w http.ResponseWriter, _ *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, models.Categories)
}

func ListSkills(w http.ResponseWriter, _ *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, models.Skills)
}

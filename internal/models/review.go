package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         uuid.UUID `json:"review_id"`
	JobID      uuid.UUID `json:"job_id"`
	ReviewerID uuid.UUID `json:"reviewer_user_id"`
	ReviewedID uuid.UUID `json:"reviewed_user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClampRating forces r into [MinRating, MaxRating].
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

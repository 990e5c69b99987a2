package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID         uuid.UUID         `json:"application_id"`
	JobID      uuid.UUID         `json:"job_id"`
	WorkerID   uuid.UUID         `json:"worker_user_id"`
	Message    string            `json:"message,omitempty"`
	Status     ApplicationStatus `json:"status"`
	MatchScore float64           `json:"match_score"`
	CreatedAt  time.Time         `json:"created_at"`

	WorkerProfile *Profile `json:"worker_profile,omitempty"`
}

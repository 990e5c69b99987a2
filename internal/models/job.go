package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// jobTransitions lists every legal status change.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted},
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the job state machine allows s -> next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, t := range jobTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Job struct {
	ID               uuid.UUID  `json:"job_id"`
	BusinessID       uuid.UUID  `json:"business_user_id"`
	BusinessName     string     `json:"business_name"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	SkillsRequired   []string   `json:"skills_required"`
	HourlyRate       float64    `json:"hourly_rate"`
	DurationHours    float64    `json:"duration_hours"`
	Location         Location   `json:"location"`
	Address          string     `json:"address"`
	Status           JobStatus  `json:"status"`
	AssignedWorkerID *uuid.UUID `json:"assigned_worker_id"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	CreatedAt        time.Time  `json:"created_at"`

	// response-only annotations
	DistanceKm        *float64           `json:"distance_km,omitempty"`
	ApplicationStatus *ApplicationStatus `json:"application_status,omitempty"`
}

// IsParticipant reports whether userID is the owning business or the assigned worker.
func (j *Job) IsParticipant(userID uuid.UUID) bool {
	if j.BusinessID == userID {
		return true
	}
	return j.AssignedWorkerID != nil && *j.AssignedWorkerID == userID
}

// JobFilter narrows job listings. Lat and Lng enable the distance filter only when both are set.
type JobFilter struct {
	Category string
	Status   JobStatus
	Lat      *float64
	Lng      *float64
	RadiusKm float64
	Limit    int
}

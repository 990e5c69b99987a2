package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/middleware"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/services"
)

// JobsAPI is the job lifecycle as seen by the HTTP layer.
type JobsAPI interface {
	Create(ctx context.Context, business *models.Profile, in services.CreateJobInput) (*models.Job, error)
	Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	List(ctx context.Context, f models.JobFilter) ([]*models.Job, error)
	Apply(ctx context.Context, worker *models.Profile, jobID uuid.UUID, in services.ApplyInput) (*models.Application, error)
	ListApplications(ctx context.Context, callerID, jobID uuid.UUID) ([]*models.Application, error)
	Accept(ctx context.Context, callerID, jobID, applicationID uuid.UUID) (*services.AcceptResult, error)
	Complete(ctx context.Context, callerID, jobID uuid.UUID) (*models.Job, error)
	Cancel(ctx context.Context, callerID, jobID uuid.UUID) (*models.Job, error)
	MyJobs(ctx context.Context, profile *models.Profile) ([]*models.Job, error)
}

var _ JobsAPI = (*services.JobService)(nil)

// JobHandler serves /api/jobs and /api/my-jobs.
type JobHandler struct {
	Jobs    JobsAPI
	Decoder BodyDecoder
	Logger  *slog.Logger
}

// Create handles POST /api/jobs. RequireRole(business) runs first.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateJobInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaCreateJob, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	job, err := h.Jobs.Create(r.Context(), middleware.ProfileFromCtx(r.Context()), in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, job)
}

// List handles GET /api/jobs?category=&status=&lat=&lng=&radius_km=.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseJobFilter(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	jobs, err := h.Jobs.List(r.Context(), f)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, orEmpty(jobs))
}

func parseJobFilter(r *http.Request) (models.JobFilter, error) {
	q := r.URL.Query()
	f := models.JobFilter{
		Category: q.Get("category"),
		Status:   models.JobStatus(q.Get("status")),
		RadiusKm: services.DefaultRadiusKm,
	}
	var err error
	if f.Lat, err = optionalFloat(q.Get("lat"), "lat"); err != nil {
		return f, err
	}
	if f.Lng, err = optionalFloat(q.Get("lng"), "lng"); err != nil {
		return f, err
	}
	radius, err := optionalFloat(q.Get("radius_km"), "radius_km")
	if err != nil {
		return f, err
	}
	if radius != nil {
		f.RadiusKm = *radius
	}
	return f, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation(name + " must be a number")
	}
	return &v, nil
}

// Get handles GET /api/jobs/{job_id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "job_id", "job")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	job, err := h.Jobs.Get(r.Context(), jobID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, job)
}

// Apply handles POST /api/jobs/{job_id}/apply. RequireRole(worker) runs first.
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "job_id", "job")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var in services.ApplyInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaApply, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	app, err := h.Jobs.Apply(r.Context(), middleware.ProfileFromCtx(r.Context()), jobID, in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, app)
}

// ListApplications handles GET /api/jobs/{job_id}/applications.
func (h *JobHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
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
	apps, err := h.Jobs.ListApplications(r.Context(), user.ID, jobID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, orEmpty(apps))
}

// Accept handles POST /api/jobs/{job_id}/accept/{application_id}.
func (h *JobHandler) Accept(w http.ResponseWriter, r *http.Request) {
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
	appID, err := pathID(r, "application_id", "application")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	res, err := h.Jobs.Accept(r.Context(), user.ID, jobID, appID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

// Complete handles POST /api/jobs/{job_id}/complete.
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Jobs.Complete, "Job completed")
}

// Cancel handles POST /api/jobs/{job_id}/cancel.
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Jobs.Cancel, "Job cancelled")
}

func (h *JobHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (*models.Job, error), msg string) {
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
	job, err := fn(r.Context(), user.ID, jobID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"message": msg, "job": job})
}

// MyJobs handles GET /api/my-jobs. LoadProfile runs first; a user without a
// profile gets an empty list.
func (h *JobHandler) MyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.MyJobs(r.Context(), middleware.ProfileFromCtx(r.Context()))
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, orEmpty(jobs))
}

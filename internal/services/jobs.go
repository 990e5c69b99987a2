package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/repository"
)

// CreateJobInput is the decoded body of POST /api/jobs.
type CreateJobInput struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	SkillsRequired []string        `json:"skills_required"`
	HourlyRate     float64         `json:"hourly_rate"`
	DurationHours  float64         `json:"duration_hours"`
	Location       models.Location `json:"location"`
	Address        string          `json:"address"`
}

// ApplyInput is the decoded body of POST /api/jobs/{job_id}/apply.
type ApplyInput struct {
	Message string `json:"message"`
}

// AcceptResult is returned after an application is accepted.
type AcceptResult struct {
	Message    string      `json:"message"`
	ChatRoomID uuid.UUID   `json:"chat_room_id"`
	Job        *models.Job `json:"job"`
}

// JobService drives the job state machine: open -> in_progress -> completed, open -> cancelled.
type JobService struct {
	Pool     TxBeginner
	Jobs     JobStore
	Apps     ApplicationStore
	Profiles ProfileStore
	Rooms    RoomCreator
	Log      *slog.Logger

	now func() time.Time
}

func NewJobService(pool TxBeginner, jobs JobStore, apps ApplicationStore, profiles ProfileStore, rooms RoomCreator, log *slog.Logger) *JobService {
	if log == nil {
		log = slog.Default()
	}
	return &JobService{Pool: pool, Jobs: jobs, Apps: apps, Profiles: profiles, Rooms: rooms, Log: log, now: time.Now}
}

// Create posts a new open job owned by the business profile.
func (s *JobService) Create(ctx context.Context, business *models.Profile, in CreateJobInput) (*models.Job, error) {
	if !business.IsBusiness() {
		return nil, apperrors.Unauthorized("only businesses can create jobs")
	}
	job := &models.Job{
		ID:             uuid.New(),
		BusinessID:     business.UserID,
		BusinessName:   business.DisplayBusinessName(),
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Category:       in.Category,
		SkillsRequired: cleanSkills(in.SkillsRequired),
		HourlyRate:     in.HourlyRate,
		DurationHours:  in.DurationHours,
		Location:       in.Location,
		Address:        in.Address,
		Status:         models.JobStatusOpen,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.Jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.Log.Info("job created", "job_id", job.ID, "business_user_id", job.BusinessID, "category", job.Category)
	return job, nil
}

// Get returns a single job.
func (s *JobService) Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	return job, nil
}

// List returns jobs matching the filter. When both coordinates are present the
// result is restricted to the radius and ordered by distance.
func (s *JobService) List(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	status := f.Status
	if status == "" {
		status = models.JobStatusOpen
	}
	if !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", status))
	}
	limit := f.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	jobs, err := s.Jobs.List(ctx, f.Category, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if f.Lat != nil && f.Lng != nil {
		if f.RadiusKm < 0 {
			return nil, apperrors.Validation("radius_km must not be negative")
		}
		jobs = FilterByDistance(jobs, models.Location{Lat: *f.Lat, Lng: *f.Lng}, f.RadiusKm)
	}
	return jobs, nil
}

// Apply records a worker's application with a match score snapshot.
func (s *JobService) Apply(ctx context.Context, worker *models.Profile, jobID uuid.UUID, in ApplyInput) (*models.Application, error) {
	if !worker.IsWorker() {
		return nil, apperrors.Unauthorized("only workers can apply to jobs")
	}
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.Conflict("job is no longer accepting applications")
	}
	if _, err := s.Apps.GetByJobAndWorker(ctx, jobID, worker.UserID); err == nil {
		return nil, apperrors.Conflict("already applied to this job")
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("lookup application: %w", err)
	}

	app := &models.Application{
		ID:         uuid.New(),
		JobID:      jobID,
		WorkerID:   worker.UserID,
		Message:    strings.TrimSpace(in.Message),
		Status:     models.ApplicationPending,
		MatchScore: MatchScore(job.SkillsRequired, worker.Skills, worker.PrestigeScore),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("already applied to this job")
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.Log.Info("application created", "job_id", jobID, "worker_user_id", worker.UserID, "match_score", app.MatchScore)
	return app, nil
}

// ListApplications returns the job's applications, best match first, with applicant profiles attached.
func (s *JobService) ListApplications(ctx context.Context, callerID, jobID uuid.UUID) ([]*models.Application, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if job.BusinessID != callerID {
		return nil, apperrors.Unauthorized("only the job owner can view applications")
	}
	apps, err := s.Apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.WorkerID)
	}
	profiles, err := s.Profiles.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load applicant profiles: %w", err)
	}
	for _, a := range apps {
		a.WorkerProfile = profiles[a.WorkerID]
	}
	RankApplications(apps)
	return apps, nil
}

// Accept assigns the job to the application's worker, rejects competing
// applications and opens the chat room, all in one transaction.
func (s *JobService) Accept(ctx context.Context, callerID, jobID, applicationID uuid.UUID) (*AcceptResult, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if job.BusinessID != callerID {
		return nil, apperrors.Unauthorized("only the job owner can accept applications")
	}
	app, err := s.Apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFound(err, "application not found")
	}
	if app.JobID != jobID {
		return nil, apperrors.NotFound("application not found")
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.Conflict("job is no longer open")
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.Jobs.GetByIDForUpdate(ctx, tx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if locked.Status != models.JobStatusOpen {
		return nil, apperrors.Conflict("job is no longer open")
	}

	now := s.now().UTC()
	if err := s.Apps.Accept(ctx, tx, jobID, applicationID); err != nil {
		return nil, fmt.Errorf("accept application: %w", err)
	}
	if err := s.Jobs.MarkInProgress(ctx, tx, jobID, app.WorkerID, now); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return nil, apperrors.Conflict("job is no longer open")
		}
		return nil, fmt.Errorf("start job: %w", err)
	}
	room := &models.ChatRoom{
		ID:           uuid.New(),
		JobID:        &jobID,
		Participants: [2]uuid.UUID{job.BusinessID, app.WorkerID},
		CreatedAt:    now,
	}
	if err := s.Rooms.CreateRoom(ctx, tx, room); err != nil {
		return nil, fmt.Errorf("create chat room: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	locked.Status = models.JobStatusInProgress
	locked.AssignedWorkerID = &app.WorkerID
	locked.StartTime = &now
	s.Log.Info("application accepted", "job_id", jobID, "application_id", applicationID, "chat_room_id", room.ID)
	return &AcceptResult{Message: "Application accepted", ChatRoomID: room.ID, Job: locked}, nil
}

// Complete closes an in-progress job and credits the assigned worker.
func (s *JobService) Complete(ctx context.Context, callerID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if job.BusinessID != callerID {
		return nil, apperrors.Unauthorized("only the job owner can complete the job")
	}
	if job.Status != models.JobStatusInProgress {
		return nil, apperrors.Conflict("job is not in progress")
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.Jobs.GetByIDForUpdate(ctx, tx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if locked.Status != models.JobStatusInProgress {
		return nil, apperrors.Conflict("job is not in progress")
	}
	now := s.now().UTC()
	if err := s.Jobs.MarkCompleted(ctx, tx, jobID, now); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return nil, apperrors.Conflict("job is not in progress")
		}
		return nil, fmt.Errorf("complete job: %w", err)
	}
	if locked.AssignedWorkerID != nil {
		if err := s.Profiles.RecordCompletion(ctx, tx, *locked.AssignedWorkerID, models.PrestigePerCompletedJob); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("record completion: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	locked.Status = models.JobStatusCompleted
	locked.EndTime = &now
	s.Log.Info("job completed", "job_id", jobID)
	return locked, nil
}

// Cancel withdraws a job that has not been assigned yet.
func (s *JobService) Cancel(ctx context.Context, callerID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if job.BusinessID != callerID {
		return nil, apperrors.Unauthorized("only the job owner can cancel the job")
	}
	if !job.Status.CanTransitionTo(models.JobStatusCancelled) {
		return nil, apperrors.Conflict("only open jobs can be cancelled")
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Jobs.MarkCancelled(ctx, tx, jobID); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return nil, apperrors.Conflict("only open jobs can be cancelled")
		}
		return nil, fmt.Errorf("cancel job: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	job.Status = models.JobStatusCancelled
	s.Log.Info("job cancelled", "job_id", jobID)
	return job, nil
}

// MyJobs lists a business's own postings, or the jobs a worker applied to
// annotated with that worker's application status.
func (s *JobService) MyJobs(ctx context.Context, profile *models.Profile) ([]*models.Job, error) {
	if profile == nil {
		return []*models.Job{}, nil
	}
	if profile.IsBusiness() {
		jobs, err := s.Jobs.ListByBusiness(ctx, profile.UserID, defaultListLimit)
		if err != nil {
			return nil, fmt.Errorf("list business jobs: %w", err)
		}
		return jobs, nil
	}

	apps, err := s.Apps.ListByWorker(ctx, profile.UserID, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list worker applications: %w", err)
	}
	if len(apps) == 0 {
		return []*models.Job{}, nil
	}
	statusByJob := make(map[uuid.UUID]models.ApplicationStatus, len(apps))
	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		statusByJob[a.JobID] = a.Status
		ids = append(ids, a.JobID)
	}
	jobs, err := s.Jobs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list applied jobs: %w", err)
	}
	for _, j := range jobs {
		st := statusByJob[j.ID]
		j.ApplicationStatus = &st
	}
	return jobs, nil
}

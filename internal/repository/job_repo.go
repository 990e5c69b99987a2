package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/models"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// Begin starts a transaction on the underlying pool.
func (r *JobRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const jobColumns = `id, business_user_id, business_name, title, description, category, skills_required, hourly_rate,
	duration_hours, lat, lng, address, status, assigned_worker_id, start_time, end_time, created_at`

func scanJob(row scanner) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.BusinessID, &j.BusinessName, &j.Title, &j.Description, &j.Category, &j.SkillsRequired,
		&j.HourlyRate, &j.DurationHours, &j.Location.Lat, &j.Location.Lng, &j.Address, &j.Status, &j.AssignedWorkerID,
		&j.StartTime, &j.EndTime, &j.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]*models.Job, error) {
	defer rows.Close()
	var list []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO jobs (id, business_user_id, business_name, title, description, category, skills_required, hourly_rate,
			duration_hours, lat, lng, address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`, j.ID, j.BusinessID, j.BusinessName, j.Title, j.Description, j.Category, nonNil(j.SkillsRequired), j.HourlyRate,
		j.DurationHours, j.Location.Lat, j.Location.Lng, j.Address, j.Status).Scan(&j.CreatedAt)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

// GetByIDForUpdate locks the job row for the rest of tx.
func (r *JobRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Job, error) {
	return scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
}

// List returns jobs with the given status (and category, when set), newest first.
func (r *JobRepo) List(ctx context.Context, category string, status models.JobStatus, limit int) ([]*models.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE status = $1 AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, status, category, limit)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *JobRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*models.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE business_user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *JobRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC
	`, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// MarkInProgress assigns the worker. It only matches an open job.
func (r *JobRepo) MarkInProgress(ctx context.Context, tx pgx.Tx, jobID, workerID uuid.UUID, start time.Time) error {
	return guardedUpdate(ctx, tx, `
		UPDATE jobs SET status = 'in_progress', assigned_worker_id = $2, start_time = $3
		WHERE id = $1 AND status = 'open'
	`, jobID, workerID, start)
}

// MarkCompleted only matches an in-progress job.
func (r *JobRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, end time.Time) error {
	return guardedUpdate(ctx, tx, `
		UPDATE jobs SET status = 'completed', end_time = $2 WHERE id = $1 AND status = 'in_progress'
	`, jobID, end)
}

// MarkCancelled only matches an open job.
func (r *JobRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) error {
	return guardedUpdate(ctx, tx, `UPDATE jobs SET status = 'cancelled' WHERE id = $1 AND status = 'open'`, jobID)
}

func guardedUpdate(ctx context.Context, tx pgx.Tx, sql string, args ...any) error {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

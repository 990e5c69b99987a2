package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/models"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

const applicationColumns = `id, job_id, worker_user_id, message, status, match_score, created_at`

func scanApplication(row scanner) (*models.Application, error) {
	var a models.Application
	if err := row.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Message, &a.Status, &a.MatchScore, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]*models.Application, error) {
	defer rows.Close()
	var list []*models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Create returns ErrDuplicate when the worker already applied to the job.
func (r *ApplicationRepo) Create(ctx context.Context, a *models.Application) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO applications (id, job_id, worker_user_id, message, status, match_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, a.ID, a.JobID, a.WorkerID, a.Message, a.Status, a.MatchScore).Scan(&a.CreatedAt)
	return mapErr(err)
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return scanApplication(r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
}

func (r *ApplicationRepo) GetByJobAndWorker(ctx context.Context, jobID, workerID uuid.UUID) (*models.Application, error) {
	return scanApplication(r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND worker_user_id = $2
	`, jobID, workerID))
}

// ListByJob returns applications in creation order.
func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY created_at ASC, id ASC
	`, jobID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (r *ApplicationRepo) ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]*models.Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE worker_user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, workerID, limit)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

// Accept marks applicationID accepted and every other application of the job rejected.
func (r *ApplicationRepo) Accept(ctx context.Context, tx pgx.Tx, jobID, applicationID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE applications SET status = 'accepted' WHERE id = $1 AND job_id = $2
	`, applicationID, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = tx.Exec(ctx, `
		UPDATE applications SET status = 'rejected' WHERE job_id = $1 AND id <> $2
	`, jobID, applicationID)
	return err
}

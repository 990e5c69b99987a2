package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/models"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

const reviewColumns = `id, job_id, reviewer_user_id, reviewed_user_id, rating, comment, created_at`

func scanReview(row scanner) (*models.Review, error) {
	var rv models.Review
	if err := row.Scan(&rv.ID, &rv.JobID, &rv.ReviewerID, &rv.ReviewedID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &rv, nil
}

// Create returns ErrDuplicate when the reviewer already reviewed the job.
func (r *ReviewRepo) Create(ctx context.Context, tx pgx.Tx, rv *models.Review) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO reviews (id, job_id, reviewer_user_id, reviewed_user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, rv.ID, rv.JobID, rv.ReviewerID, rv.ReviewedID, rv.Rating, rv.Comment).Scan(&rv.CreatedAt)
	return mapErr(err)
}

func (r *ReviewRepo) GetByJobAndReviewer(ctx context.Context, jobID, reviewerID uuid.UUID) (*models.Review, error) {
	return scanReview(r.pool.QueryRow(ctx, `
		SELECT `+reviewColumns+` FROM reviews WHERE job_id = $1 AND reviewer_user_id = $2
	`, jobID, reviewerID))
}

// RatingsFor returns every rating the user has received, read inside tx.
func (r *ReviewRepo) RatingsFor(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]int, error) {
	rows, err := tx.Query(ctx, `SELECT rating FROM reviews WHERE reviewed_user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *ReviewRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reviewColumns+` FROM reviews WHERE reviewed_user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rv)
	}
	return list, rows.Err()
}

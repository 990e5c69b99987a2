package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/repository"
)

// Repository stores users and their server-side sessions.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, picture, role, profile_completed, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.Role, &u.ProfileCompleted, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindOrCreateUser returns the user with u.Email, inserting u when none exists.
// An existing user is returned unchanged.
func (r *Repository) FindOrCreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, picture, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.Picture, u.CreatedAt))
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// SetRole records the chosen role without completing onboarding.
func (r *Repository) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET role = $2 WHERE id = $1
		RETURNING `+userColumns, userID, role))
}

// CompleteProfile marks onboarding done inside the caller's transaction.
func (r *Repository) CompleteProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, role models.Role) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET role = $2, profile_completed = TRUE WHERE id = $1`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceSessions deletes every session of s.UserID and stores s, in one transaction.
func (r *Repository) ReplaceSessions(ctx context.Context, s *models.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, s.UserID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)
	`, s.ID, s.UserID, s.ExpiresAt, s.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DeleteSession is idempotent.
func (r *Repository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpiredSessions removes sessions that expired at or before now.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

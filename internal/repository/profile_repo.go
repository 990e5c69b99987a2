package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `user_id, role, name, photo, bio, skills, lat, lng, address, age,
	prestige_score, badges, completed_jobs, business_name, business_photos, rating, rating_count, created_at, updated_at`

func scanProfile(row scanner) (*models.Profile, error) {
	var p models.Profile
	var lat, lng *float64
	err := row.Scan(&p.UserID, &p.Role, &p.Name, &p.Photo, &p.Bio, &p.Skills, &lat, &lng, &p.Address, &p.Age,
		&p.PrestigeScore, &p.Badges, &p.CompletedJobs, &p.BusinessName, &p.BusinessPhotos, &p.Rating, &p.RatingCount,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if lat != nil && lng != nil {
		p.Location = &models.Location{Lat: *lat, Lng: *lng}
	}
	return &p, nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

// GetByUserIDForUpdate locks the profile row for the rest of tx.
func (r *ProfileRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Profile, error) {
	return scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID))
}

// ListByUserIDs returns the profiles that exist, keyed by user ID.
func (r *ProfileRepo) ListByUserIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	out := make(map[uuid.UUID]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	return out, rows.Err()
}

// Upsert writes the client-editable fields. Trust fields are only set on first insert.
func (r *ProfileRepo) Upsert(ctx context.Context, tx pgx.Tx, p *models.Profile) error {
	var lat, lng *float64
	if p.Location != nil {
		lat, lng = &p.Location.Lat, &p.Location.Lng
	}
	return tx.QueryRow(ctx, `
		INSERT INTO profiles (user_id, role, name, photo, bio, skills, lat, lng, address, age, business_name, business_photos, badges)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, photo = EXCLUDED.photo, bio = EXCLUDED.bio, skills = EXCLUDED.skills,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng, address = EXCLUDED.address, age = EXCLUDED.age,
			business_name = EXCLUDED.business_name, business_photos = EXCLUDED.business_photos, updated_at = now()
		RETURNING prestige_score, badges, completed_jobs, rating, rating_count, created_at, updated_at
	`, p.UserID, p.Role, p.Name, p.Photo, p.Bio, nonNil(p.Skills), lat, lng, p.Address, p.Age, p.BusinessName,
		nonNil(p.BusinessPhotos), nonNil(p.Badges),
	).Scan(&p.PrestigeScore, &p.Badges, &p.CompletedJobs, &p.Rating, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
}

// RecordCompletion credits a worker with one completed job and the given prestige.
func (r *ProfileRepo) RecordCompletion(ctx context.Context, tx pgx.Tx, userID uuid.UUID, prestige int) error {
	_, err := tx.Exec(ctx, `
		UPDATE profiles SET completed_jobs = completed_jobs + 1, prestige_score = prestige_score + $2, updated_at = $3
		WHERE user_id = $1
	`, userID, prestige, time.Now().UTC())
	return err
}

// UpdateTrust stores a freshly computed rating aggregate and badge set.
func (r *ProfileRepo) UpdateTrust(ctx context.Context, tx pgx.Tx, userID uuid.UUID, rating float64, count int, badges []string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE profiles SET rating = $2, rating_count = $3, badges = $4, updated_at = now()
		WHERE user_id = $1
	`, userID, rating, count, nonNil(badges))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

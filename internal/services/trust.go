package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/repository"
)

// Badge thresholds.
const (
	risingStarMinReviews = 5
	trustedMinReviews    = 20
	topRatedMinReviews   = 10
	topRatedMinAverage   = 4.5
)

// RatingSummary is the aggregate over every review a user received.
// Average is unrounded; Rating is what gets stored on the profile.
type RatingSummary struct {
	Average float64
	Rating  float64
	Count   int
}

// AggregateRatings averages ratings. No ratings yields a zero summary.
func AggregateRatings(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return RatingSummary{Average: avg, Rating: round2(avg), Count: len(ratings)}
}

// AwardBadges returns current plus any newly earned badges, and the newly
// earned ones on their own. Badges are never removed. Only workers earn them.
func AwardBadges(role models.Role, current []string, sum RatingSummary) (badges, granted []string) {
	badges = append([]string{}, current...)
	if role != models.RoleWorker {
		return badges, nil
	}
	has := make(map[string]bool, len(current))
	for _, b := range current {
		has[b] = true
	}
	grant := func(badge string, earned bool) {
		if earned && !has[badge] {
			has[badge] = true
			badges = append(badges, badge)
			granted = append(granted, badge)
		}
	}
	grant(models.BadgeRisingStar, sum.Count >= risingStarMinReviews)
	grant(models.BadgeTrusted, sum.Count >= trustedMinReviews)
	grant(models.BadgeTopRated, sum.Count >= topRatedMinReviews && sum.Average >= topRatedMinAverage)
	return badges, granted
}

// SubmitReviewInput is the decoded body of POST /api/jobs/{job_id}/review.
type SubmitReviewInput struct {
	Rating  ReviewRating `json:"rating"`
	Comment string       `json:"comment"`
}

// ReviewRating decodes any JSON integer, saturating values outside the int
// range. Clamping to 1..5 happens on submit.
type ReviewRating int

func (r *ReviewRating) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("rating: %w", err)
	}
	switch {
	case f >= math.MaxInt:
		*r = ReviewRating(math.MaxInt)
	case f <= math.MinInt:
		*r = ReviewRating(math.MinInt)
	default:
		*r = ReviewRating(math.Trunc(f))
	}
	return nil
}

// ReviewJobStore is the job lookup ReviewService needs.
type ReviewJobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ReviewService records reviews on completed jobs and keeps the reviewed
// profile's rating, rating_count and badges in step.
type ReviewService struct {
	Pool     TxBeginner
	Jobs     ReviewJobStore
	Reviews  ReviewStore
	Profiles ProfileStore
	Log      *slog.Logger

	now func() time.Time
}

func NewReviewService(pool TxBeginner, jobs ReviewJobStore, reviews ReviewStore, profiles ProfileStore, log *slog.Logger) *ReviewService {
	if log == nil {
		log = slog.Default()
	}
	return &ReviewService{Pool: pool, Jobs: jobs, Reviews: reviews, Profiles: profiles, Log: log, now: time.Now}
}

// Submit stores the caller's review of the other party on a completed job.
func (s *ReviewService) Submit(ctx context.Context, reviewerID, jobID uuid.UUID, in SubmitReviewInput) (*models.Review, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job not found")
	}
	if job.Status != models.JobStatusCompleted {
		return nil, apperrors.Conflict("can only review completed jobs")
	}
	reviewedID, err := counterparty(job, reviewerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Reviews.GetByJobAndReviewer(ctx, jobID, reviewerID); err == nil {
		return nil, apperrors.Conflict("already reviewed this job")
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("lookup review: %w", err)
	}

	review := &models.Review{
		ID:         uuid.New(),
		JobID:      jobID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     models.ClampRating(int(in.Rating)),
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  s.now().UTC(),
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock first so concurrent reviews of the same user aggregate serially.
	profile, err := s.Profiles.GetByUserIDForUpdate(ctx, tx, reviewedID)
	if isNotFound(err) {
		return nil, apperrors.NotFound("reviewed user has no profile")
	} else if err != nil {
		return nil, fmt.Errorf("lock reviewed profile: %w", err)
	}
	if err := s.Reviews.Create(ctx, tx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("already reviewed this job")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	ratings, err := s.Reviews.RatingsFor(ctx, tx, reviewedID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	sum := AggregateRatings(ratings)
	badges, granted := AwardBadges(profile.Role, profile.Badges, sum)
	if err := s.Profiles.UpdateTrust(ctx, tx, reviewedID, sum.Rating, sum.Count, badges); err != nil {
		return nil, fmt.Errorf("update trust: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.Log.Info("review submitted", "job_id", jobID, "reviewed_user_id", reviewedID, "rating", review.Rating)
	if len(granted) > 0 {
		s.Log.Info("badges granted", "user_id", reviewedID, "badges", granted)
	}
	return review, nil
}

// ListForUser returns reviews the user received, newest first.
func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error) {
	reviews, err := s.Reviews.ListForUser(ctx, userID, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// counterparty derives who the reviewer is reviewing on this job.
func counterparty(job *models.Job, reviewerID uuid.UUID) (uuid.UUID, error) {
	if reviewerID == job.BusinessID {
		if job.AssignedWorkerID == nil {
			return uuid.Nil, apperrors.Conflict("job has no assigned worker")
		}
		return *job.AssignedWorkerID, nil
	}
	if job.AssignedWorkerID != nil && *job.AssignedWorkerID == reviewerID {
		return job.BusinessID, nil
	}
	return uuid.Nil, apperrors.Unauthorized("not authorized to review this job")
}

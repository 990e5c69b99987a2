package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/repository"
)

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// JobStore is the job repository surface used by the services.
type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Job, error)
	List(ctx context.Context, category string, status models.JobStatus, limit int) ([]*models.Job, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*models.Job, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Job, error)
	MarkInProgress(ctx context.Context, tx pgx.Tx, jobID, workerID uuid.UUID, start time.Time) error
	MarkCompleted(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, end time.Time) error
	MarkCancelled(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) error
}

// ApplicationStore is the application repository surface used by JobService.
type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetByJobAndWorker(ctx context.Context, jobID, workerID uuid.UUID) (*models.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Application, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]*models.Application, error)
	Accept(ctx context.Context, tx pgx.Tx, jobID, applicationID uuid.UUID) error
}

// ProfileStore is the profile repository surface shared by the services.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Profile, error)
	ListByUserIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error)
	Upsert(ctx context.Context, tx pgx.Tx, p *models.Profile) error
	RecordCompletion(ctx context.Context, tx pgx.Tx, userID uuid.UUID, prestige int) error
	UpdateTrust(ctx context.Context, tx pgx.Tx, userID uuid.UUID, rating float64, count int, badges []string) error
}

// ReviewStore is the review repository surface used by ReviewService.
type ReviewStore interface {
	Create(ctx context.Context, tx pgx.Tx, rv *models.Review) error
	GetByJobAndReviewer(ctx context.Context, jobID, reviewerID uuid.UUID) (*models.Review, error)
	RatingsFor(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]int, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Review, error)
}

// ChatStore is the chat repository surface used by ChatService.
type ChatStore interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatRoom, error)
	ListMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error)
	AddMessage(ctx context.Context, m *models.ChatMessage) error
}

// RoomCreator opens a chat room inside the caller's transaction.
type RoomCreator interface {
	CreateRoom(ctx context.Context, tx pgx.Tx, rm *models.ChatRoom) error
}

// UserRoleStore records role choice and onboarding completion on the user record.
type UserRoleStore interface {
	SetRole(ctx context.Context, userID uuid.UUID, role models.Role) (*models.User, error)
	CompleteProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, role models.Role) error
}

// Listing limits.
const (
	defaultListLimit = 100
	maxListLimit     = 100
	messagePageSize  = 100
)

// notFound converts a repository miss into a 404 carrying msg.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(msg)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

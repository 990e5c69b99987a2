package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
)

// SetRoleInput is the decoded body of POST /api/user/set-role.
type SetRoleInput struct {
	Role string `json:"role"`
}

// WorkerOnboardingInput is the decoded body of POST /api/onboarding/worker.
type WorkerOnboardingInput struct {
	Name     string           `json:"name"`
	Age      *int             `json:"age"`
	Bio      string           `json:"bio"`
	Photo    string           `json:"photo"`
	Skills   []string         `json:"skills"`
	Location *models.Location `json:"location"`
	Address  string           `json:"address"`
}

// BusinessOnboardingInput is the decoded body of POST /api/onboarding/business.
type BusinessOnboardingInput struct {
	Name           string           `json:"name"`
	BusinessName   string           `json:"business_name"`
	Bio            string           `json:"bio"`
	Photo          string           `json:"photo"`
	BusinessPhotos []string         `json:"business_photos"`
	Skills         []string         `json:"skills"`
	Location       *models.Location `json:"location"`
	Address        string           `json:"address"`
}

// ProfileService owns role selection and onboarding. Trust fields are only
// ever written by JobService and ReviewService.
type ProfileService struct {
	Pool     TxBeginner
	Profiles ProfileStore
	Users    UserRoleStore
	Log      *slog.Logger

	now func() time.Time
}

func NewProfileService(pool TxBeginner, profiles ProfileStore, users UserRoleStore, log *slog.Logger) *ProfileService {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileService{Pool: pool, Profiles: profiles, Users: users, Log: log, now: time.Now}
}

// SetRole records the role a user picked before onboarding.
func (s *ProfileService) SetRole(ctx context.Context, userID uuid.UUID, in SetRoleInput) (*models.User, error) {
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.ensureRoleFree(ctx, userID, role); err != nil {
		return nil, err
	}
	u, err := s.Users.SetRole(ctx, userID, role)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// OnboardWorker creates or updates the caller's worker profile.
func (s *ProfileService) OnboardWorker(ctx context.Context, userID uuid.UUID, in WorkerOnboardingInput) (*models.Profile, error) {
	p := &models.Profile{
		UserID:   userID,
		Role:     models.RoleWorker,
		Name:     strings.TrimSpace(in.Name),
		Photo:    in.Photo,
		Bio:      strings.TrimSpace(in.Bio),
		Skills:   cleanSkills(in.Skills),
		Location: in.Location,
		Address:  in.Address,
		Age:      in.Age,
		Badges:   []string{models.BadgeNewcomer},
	}
	return s.onboard(ctx, p)
}

// OnboardBusiness creates or updates the caller's business profile.
func (s *ProfileService) OnboardBusiness(ctx context.Context, userID uuid.UUID, in BusinessOnboardingInput) (*models.Profile, error) {
	p := &models.Profile{
		UserID:         userID,
		Role:           models.RoleBusiness,
		Name:           strings.TrimSpace(in.Name),
		Photo:          in.Photo,
		Bio:            strings.TrimSpace(in.Bio),
		Skills:         cleanSkills(in.Skills),
		Location:       in.Location,
		Address:        in.Address,
		BusinessName:   strings.TrimSpace(in.BusinessName),
		BusinessPhotos: in.BusinessPhotos,
		Badges:         []string{},
	}
	return s.onboard(ctx, p)
}

func (s *ProfileService) onboard(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if err := s.ensureRoleFree(ctx, p.UserID, p.Role); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Profiles.Upsert(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	if err := s.Users.CompleteProfile(ctx, tx, p.UserID, p.Role); err != nil {
		return nil, notFound(err, "user not found")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	s.Log.Info("profile onboarded", "user_id", p.UserID, "role", p.Role)
	return p, nil
}

// ensureRoleFree rejects switching a user whose profile already holds another role.
func (s *ProfileService) ensureRoleFree(ctx context.Context, userID uuid.UUID, role models.Role) error {
	existing, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("lookup profile: %w", err)
	}
	if existing.Role != role {
		return apperrors.Conflict(fmt.Sprintf("profile already onboarded as %s", existing.Role))
	}
	return nil
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.Get(ctx, userID)
}

// Get returns any user's profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "profile not found")
	}
	return p, nil
}

// Lookup is the profile resolver used by the role middleware. A missing
// profile is reported as (nil, nil).
func (s *ProfileService) Lookup(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
)

func newTestProfileService(m *memStore) (*ProfileService, uuid.UUID) {
	s := NewProfileService(&fakePool{}, memProfiles{m}, memUsers{m}, quietLogger())
	s.now = clock(epoch)
	id := uuid.New()
	m.mu.Lock()
	m.users[id] = &models.User{ID: id, Email: "leo@example.com"}
	m.mu.Unlock()
	return s, id
}

func TestOnboardWorker_StartsAsNewcomer(t *testing.T) {
	m := newMemStore()
	svc, userID := newTestProfileService(m)
	age := 24

	p, err := svc.OnboardWorker(context.Background(), userID, WorkerOnboardingInput{
		Name:     " Leo ",
		Age:      &age,
		Skills:   []string{"Barista", " "},
		Location: &buenosAires,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, p.Role)
	assert.Equal(t, "Leo", p.Name)
	assert.Equal(t, []string{"Barista"}, p.Skills)
	assert.Equal(t, []string{models.BadgeNewcomer}, p.Badges)

	u := m.users[userID]
	require.NotNil(t, u.Role)
	assert.Equal(t, models.RoleWorker, *u.Role)
	assert.True(t, u.ProfileCompleted)
}

func TestOnboardWorker_PreservesTrustFields(t *testing.T) {
	m := newMemStore()
	svc, userID := newTestProfileService(m)
	_, err := svc.OnboardWorker(context.Background(), userID, WorkerOnboardingInput{Name: "Leo"})
	require.NoError(t, err)

	m.mu.Lock()
	m.profiles[userID].PrestigeScore = 40
	m.profiles[userID].Badges = []string{models.BadgeNewcomer, models.BadgeRisingStar}
	m.profiles[userID].RatingCount = 5
	m.mu.Unlock()

	p, err := svc.OnboardWorker(context.Background(), userID, WorkerOnboardingInput{Name: "Leo B", Bio: "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "new bio", p.Bio)
	assert.Equal(t, 40, p.PrestigeScore)
	assert.Equal(t, 5, p.RatingCount)
	assert.Equal(t, []string{models.BadgeNewcomer, models.BadgeRisingStar}, p.Badges)
}

func TestOnboardBusiness_KeepsHiringCategories(t *testing.T) {
	m := newMemStore()
	svc, userID := newTestProfileService(m)

	p, err := svc.OnboardBusiness(context.Background(), userID, BusinessOnboardingInput{
		Name:         "Ana",
		BusinessName: " Café Sur ",
		Skills:       []string{" Barista", "", "Cashier"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Café Sur", p.BusinessName)
	assert.Equal(t, []string{"Barista", "Cashier"}, p.Skills)
	assert.Empty(t, p.Badges)
	assert.Equal(t, []string{"Barista", "Cashier"}, m.profile(userID).Skills)
}

func TestOnboard_RoleConflict(t *testing.T) {
	m := newMemStore()
	svc, userID := newTestProfileService(m)
	_, err := svc.OnboardBusiness(context.Background(), userID, BusinessOnboardingInput{Name: "Ana", BusinessName: "Café"})
	require.NoError(t, err)

	_, err = svc.OnboardWorker(context.Background(), userID, WorkerOnboardingInput{Name: "Ana"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.SetRole(context.Background(), userID, SetRoleInput{Role: "worker"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	u, err := svc.SetRole(context.Background(), userID, SetRoleInput{Role: "business"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleBusiness, *u.Role)
}

func TestSetRole(t *testing.T) {
	m := newMemStore()
	svc, userID := newTestProfileService(m)

	_, err := svc.SetRole(context.Background(), userID, SetRoleInput{Role: "admin"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	u, err := svc.SetRole(context.Background(), userID, SetRoleInput{Role: "worker"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, *u.Role)
	assert.False(t, u.ProfileCompleted)

	_, err = svc.SetRole(context.Background(), uuid.New(), SetRoleInput{Role: "worker"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetProfile(t *testing.T) {
	m := newMemStore()
	svc, userID := newTestProfileService(m)

	_, err := svc.Me(context.Background(), userID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	p, err := svc.Lookup(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = svc.OnboardBusiness(context.Background(), userID, BusinessOnboardingInput{Name: "Ana", BusinessName: "Café"})
	require.NoError(t, err)
	got, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Café", got.DisplayBusinessName())
}

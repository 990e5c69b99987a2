package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadshift/backend/internal/models"
)

// ---------------------------------------------------------------------------
// 1. MatchScore
// ---------------------------------------------------------------------------

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		worker   []string
		prestige int
		want     float64
	}{
		{name: "no required skills is a flat 50", required: nil, worker: []string{"Barista"}, want: 50},
		{name: "full overlap", required: []string{"Barista", "Caja registradora"}, worker: []string{"Barista", "Caja registradora"}, want: 100},
		{name: "half overlap", required: []string{"Barista", "Cocina"}, worker: []string{"Barista"}, want: 50},
		{name: "no overlap", required: []string{"Barista"}, worker: []string{"Limpieza"}, want: 0},
		{name: "case and whitespace ignored", required: []string{" barista ", "COCINA"}, worker: []string{"Barista", "cocina"}, want: 100},
		{name: "duplicate required skills count once", required: []string{"Barista", "barista"}, worker: []string{"Barista"}, want: 100},
		{name: "prestige bonus is fractional", required: []string{"Barista", "Cocina"}, worker: []string{"Barista"}, prestige: 35, want: 53.5},
		{name: "prestige bonus capped at 20", required: []string{"Barista", "Cocina"}, worker: []string{"Barista"}, prestige: 1000, want: 70},
		{name: "total clamped to 100", required: []string{"Barista"}, worker: []string{"Barista"}, prestige: 200, want: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MatchScore(tc.required, tc.worker, tc.prestige)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

// ---------------------------------------------------------------------------
// 2. RankApplications orders by score then by creation time
// ---------------------------------------------------------------------------

func TestRankApplications(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	early := &models.Application{ID: uuid.New(), MatchScore: 70, CreatedAt: base}
	late := &models.Application{ID: uuid.New(), MatchScore: 70, CreatedAt: base.Add(time.Minute)}
	best := &models.Application{ID: uuid.New(), MatchScore: 95, CreatedAt: base.Add(2 * time.Minute)}
	worst := &models.Application{ID: uuid.New(), MatchScore: 10, CreatedAt: base.Add(-time.Minute)}

	apps := []*models.Application{late, worst, early, best}
	RankApplications(apps)

	require.Len(t, apps, 4)
	assert.Equal(t, []uuid.UUID{best.ID, early.ID, late.ID, worst.ID},
		[]uuid.UUID{apps[0].ID, apps[1].ID, apps[2].ID, apps[3].ID})
}

// ---------------------------------------------------------------------------
// 3. Planar distance filter
// ---------------------------------------------------------------------------

func TestPlanarDistanceKm(t *testing.T) {
	d := PlanarDistanceKm(models.Location{Lat: 0, Lng: 0}, models.Location{Lat: 0.03, Lng: 0.04})
	assert.InDelta(t, 5.55, d, 1e-9)
}

func TestFilterByDistance(t *testing.T) {
	origin := models.Location{Lat: -34.6, Lng: -58.4}
	near := &models.Job{ID: uuid.New(), Location: models.Location{Lat: -34.61, Lng: -58.4}}
	mid := &models.Job{ID: uuid.New(), Location: models.Location{Lat: -34.65, Lng: -58.4}}
	far := &models.Job{ID: uuid.New(), Location: models.Location{Lat: -35.6, Lng: -58.4}}

	out := FilterByDistance([]*models.Job{far, mid, near}, origin, DefaultRadiusKm)

	require.Len(t, out, 2)
	assert.Equal(t, near.ID, out[0].ID)
	assert.Equal(t, mid.ID, out[1].ID)
	require.NotNil(t, out[0].DistanceKm)
	assert.Equal(t, 1.11, *out[0].DistanceKm)
	assert.Equal(t, 5.55, *out[1].DistanceKm)
	assert.Nil(t, far.DistanceKm, "jobs outside the radius are not annotated")
}

func TestFilterByDistance_ZeroRadiusKeepsExactMatches(t *testing.T) {
	here := models.Location{Lat: 10, Lng: 10}
	same := &models.Job{ID: uuid.New(), Location: here}
	other := &models.Job{ID: uuid.New(), Location: models.Location{Lat: 10.001, Lng: 10}}

	out := FilterByDistance([]*models.Job{same, other}, here, 0)
	require.Len(t, out, 1)
	assert.Equal(t, same.ID, out[0].ID)
	assert.Equal(t, 0.0, *out[0].DistanceKm)
}

package services

import (
	"math"
	"sort"
	"strings"

	"github.com/nomadshift/backend/internal/models"
)

// Match score weights.
const (
	noSkillsBaseScore = 50.0
	prestigeDivisor   = 10.0
	maxPrestigeBonus  = 20.0
	minMatchScore     = 0.0
	maxMatchScore     = 100.0
)

// MatchScore rates how well a worker fits a job on a 0-100 scale.
// The base is the share of required skills the worker has (50 when the job lists none);
// prestige adds up to 20 points on top.
func MatchScore(requiredSkills, workerSkills []string, prestige int) float64 {
	required := skillSet(requiredSkills)
	base := noSkillsBaseScore
	if len(required) > 0 {
		have := skillSet(workerSkills)
		matched := 0
		for s := range required {
			if have[s] {
				matched++
			}
		}
		base = float64(matched) / float64(len(required)) * 100
	}
	bonus := math.Min(float64(prestige)/prestigeDivisor, maxPrestigeBonus)
	return clampScore(base + bonus)
}

func clampScore(s float64) float64 {
	if s < minMatchScore {
		return minMatchScore
	}
	if s > maxMatchScore {
		return maxMatchScore
	}
	return s
}

// skillSet normalizes skills for comparison: trimmed, case-folded, de-duplicated.
func skillSet(skills []string) map[string]bool {
	out := make(map[string]bool, len(skills))
	for _, s := range skills {
		n := strings.ToLower(strings.TrimSpace(s))
		if n != "" {
			out[n] = true
		}
	}
	return out
}

// cleanSkills trims each skill and drops empties, keeping the caller's spelling.
func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RankApplications sorts best match first. Equal scores keep creation order.
func RankApplications(apps []*models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].MatchScore != apps[j].MatchScore {
			return apps[i].MatchScore > apps[j].MatchScore
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}

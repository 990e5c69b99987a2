package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of marketplace roles.
type Role string

const (
	RoleWorker   Role = "worker"
	RoleBusiness Role = "business"
)

func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleBusiness
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// Badge identifiers. Badges are only ever appended to a profile.
const (
	BadgeNewcomer   = "newcomer"
	BadgeRisingStar = "rising_star"
	BadgeTrusted    = "trusted"
	BadgeTopRated   = "top_rated"
)

// Points added to a worker's prestige score per completed job.
const PrestigePerCompletedJob = 10

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Profile struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     Role      `json:"role"`
	Name     string    `json:"name"`
	Photo    string    `json:"photo,omitempty"`
	Bio      string    `json:"bio,omitempty"`
	Skills   []string  `json:"skills"`
	Location *Location `json:"location,omitempty"`
	Address  string    `json:"address,omitempty"`

	// worker payload
	Age           *int     `json:"age,omitempty"`
	PrestigeScore int      `json:"prestige_score"`
	Badges        []string `json:"badges"`
	CompletedJobs int      `json:"completed_jobs"`

	// business payload
	BusinessName   string   `json:"business_name,omitempty"`
	BusinessPhotos []string `json:"business_photos,omitempty"`

	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) IsWorker() bool   { return p != nil && p.Role == RoleWorker }
func (p *Profile) IsBusiness() bool { return p != nil && p.Role == RoleBusiness }

// HasBadge reports whether the badge is already present.
func (p *Profile) HasBadge(badge string) bool {
	for _, b := range p.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// DisplayBusinessName is the name shown on jobs posted by this profile.
func (p *Profile) DisplayBusinessName() string {
	if p.BusinessName != "" {
		return p.BusinessName
	}
	return p.Name
}

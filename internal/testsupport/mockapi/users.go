package mockapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

// TestUser is a credential the mock accepts on the token endpoint.
type TestUser struct {
	Email    string
	Password string
	FullName string
	Tier     domain.Tier
	Roles    []string
	Addons   []string
}

// DefaultUsers is the built-in test-user table.
func DefaultUsers() []TestUser {
	return []TestUser{
		{
			Email:    "test@neko.dev",
			Password: "password123",
			FullName: "Test User",
			Tier:     domain.TierBuild,
			Roles:    []string{"member"},
			Addons:   []string{"credit_boost"},
		},
		{
			Email:    "free@neko.dev",
			Password: "password123",
			FullName: "Free User",
			Tier:     domain.TierFree,
			Roles:    []string{"member"},
		},
		{
			Email:    "admin@neko.dev",
			Password: "admin12345",
			FullName: "Admin User",
			Tier:     domain.TierScale,
			Roles:    []string{"member", "admin"},
		},
	}
}

// UserData is the synthesized per-user bundle the REST and function
// endpoints read from.
type UserData struct {
	User         domain.User                `json:"user"`
	Profile      domain.Profile             `json:"profile"`
	Subscription domain.Subscription        `json:"subscription"`
	Roles        []string                   `json:"roles"`
	Addons       []string                   `json:"addons"`
	Progress     []domain.ProgressRecord    `json:"progress"`
	Tasks        []map[string]any           `json:"tasks"`
	Streak       *domain.StreakState        `json:"streak,omitempty"`
	Achievements []domain.EarnedAchievement `json:"achievements"`
}

func newUserData(id, email, fullName string, tier domain.Tier, roles, addons []string, now time.Time) *UserData {
	if id == "" {
		id = uuid.NewString()
	}
	if tier == "" {
		tier = domain.TierFree
	}
	if len(roles) == 0 {
		roles = []string{"member"}
	}

	data := &UserData{
		User: domain.User{ID: id, Email: email, CreatedAt: now},
		Profile: domain.Profile{
			ID:        id,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Subscription: domain.Subscription{Tier: tier, Subscribed: tier != domain.TierFree},
		Roles:        append([]string{}, roles...),
		Addons:       append([]string{}, addons...),
		Progress:     []domain.ProgressRecord{},
		Tasks:        []map[string]any{},
		Achievements: []domain.EarnedAchievement{},
	}
	if fullName != "" {
		name := fullName
		data.Profile.FullName = &name
	}
	if data.Subscription.Subscribed {
		end := now.AddDate(0, 1, 0)
		data.Subscription.SubscriptionEnd = &end
	}
	return data
}

func (d *UserData) clone() *UserData {
	raw := *d
	raw.Roles = append([]string{}, d.Roles...)
	raw.Addons = append([]string{}, d.Addons...)
	raw.Progress = append([]domain.ProgressRecord{}, d.Progress...)
	raw.Tasks = append([]map[string]any{}, d.Tasks...)
	raw.Achievements = append([]domain.EarnedAchievement{}, d.Achievements...)
	if d.Streak != nil {
		raw.Streak = d.Streak.Clone()
	}
	return &raw
}

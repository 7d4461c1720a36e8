package backend

import (
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

// Table is a REST resource exposed by the hosted backend. The set is
// closed: anything else is not a table.
type Table string

const (
	TableProfiles         Table = "profiles"
	TableSubscriptions    Table = "subscriptions"
	TableUserRoles        Table = "user_roles"
	TableProgress         Table = "progress"
	TableUserTasks        Table = "user_tasks"
	TableUserStreaks      Table = "user_streaks"
	TableUserAchievements Table = "user_achievements"
	TableResources        Table = "resources"
	TableAnnouncements    Table = "announcements"
)

var tables = []Table{
	TableProfiles,
	TableSubscriptions,
	TableUserRoles,
	TableProgress,
	TableUserTasks,
	TableUserStreaks,
	TableUserAchievements,
	TableResources,
	TableAnnouncements,
}

func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

func ParseTable(name string) (Table, bool) {
	for _, t := range tables {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Public tables are readable without a session.
func (t Table) Public() bool {
	return t == TableResources || t == TableAnnouncements
}

// Function is a server-side function name.
type Function string

const (
	FuncCheckSubscription Function = "check-subscription"
	FuncCheckAddons       Function = "check-addons"
	FuncCreateCheckout    Function = "create-checkout"
	FuncCustomerPortal    Function = "customer-portal"
)

func ParseFunction(name string) (Function, bool) {
	switch f := Function(name); f {
	case FuncCheckSubscription, FuncCheckAddons, FuncCreateCheckout, FuncCustomerPortal:
		return f, true
	}
	return "", false
}

// UserResponse is the auth user object.
type UserResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

func (u UserResponse) Domain() domain.User {
	return domain.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// TokenResponse is the token bundle returned by sign-in and sign-up.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func (t TokenResponse) Session() *domain.Session {
	s := &domain.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
		User:         t.User.Domain(),
	}
	if t.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0).UTC()
	}
	return s
}

type credentialsRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// CheckoutRequest is the create-checkout payload.
type CheckoutRequest struct {
	PriceID string `json:"priceId"`
}

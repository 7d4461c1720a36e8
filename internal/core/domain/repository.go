package domain

import (
	"context"
)

type ProgressRepository interface {
	// ListByUser returns every progress record of a user.
	ListByUser(ctx context.Context, userID string) ([]*ProgressRecord, error)

	// Get returns ErrProgressNotFound when the step was never saved.
	Get(ctx context.Context, userID string, module ModuleID, step string) (*ProgressRecord, error)

	// Upsert inserts or updates the record keyed by (user, module, step).
	Upsert(ctx context.Context, record *ProgressRecord) error
}

type StreakRepository interface {
	// Get returns ErrStreakNotFound when the user has no row yet.
	Get(ctx context.Context, userID string) (*StreakState, error)

	// Save upserts the whole row.
	Save(ctx context.Context, state *StreakState) error
}

type AchievementRepository interface {
	ListEarned(ctx context.Context, userID string) ([]*EarnedAchievement, error)

	// Insert stores an earned achievement. It reports false, without error,
	// when the (user, achievement) pair already exists.
	Insert(ctx context.Context, earned *EarnedAchievement) (bool, error)
}

type TradelineRepository interface {
	Create(ctx context.Context, t *Tradeline) error
	ListByUser(ctx context.Context, userID string) ([]*Tradeline, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type LayoutRepository interface {
	// Get returns ErrLayoutNotFound when the user has no saved layout.
	Get(ctx context.Context, userID string) (*WidgetLayout, error)

	// Save upserts the whole document.
	Save(ctx context.Context, layout *WidgetLayout) error
}

type ProfileRepository interface {
	// Get returns ErrProfileNotFound when the profile was never synced.
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}

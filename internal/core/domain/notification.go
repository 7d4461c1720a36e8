package domain

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotifyAchievementUnlocked NotificationKind = "achievement_unlocked"
	NotifyStreakMilestone     NotificationKind = "streak_milestone"
	NotifyLayoutUpdated       NotificationKind = "layout_updated"
	NotifySaveFailed          NotificationKind = "save_failed"
)

// Notification is a user-facing toast.
type Notification struct {
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      Metadata         `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
